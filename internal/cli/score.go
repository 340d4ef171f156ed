package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentwarden/agentwarden-go/internal/config"
	"github.com/agentwarden/agentwarden-go/internal/transport"
	"github.com/agentwarden/agentwarden-go/internal/wire"
)

var (
	scoreSession   string
	scoreCompleted bool
	scoreQuality   float64
	scoreMetrics   []string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreSession, "session", "", "Session ID to score (required)")
	scoreCmd.Flags().BoolVar(&scoreCompleted, "completed", false, "Whether the task completed")
	scoreCmd.Flags().Float64Var(&scoreQuality, "quality", 0, "Quality score in [0,1]")
	scoreCmd.Flags().StringArrayVar(&scoreMetrics, "metric", nil, "Extra metric as key=value (repeatable)")
	scoreCmd.MarkFlagRequired("session")
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Report a terminal outcome score for a session",
	Long: "Posts a task outcome for an already-ended session, identified by its\n" +
		"ID. Useful when the scoring signal arrives after the agent process\n" +
		"that owned the session is gone.",
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	if scoreQuality < 0 || scoreQuality > 1 {
		return fmt.Errorf("--quality must be in [0,1], got %v", scoreQuality)
	}

	metrics := map[string]string{}
	for _, kv := range scoreMetrics {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --metric %q, want key=value", kv)
		}
		metrics[k] = v
	}

	poster, err := newPoster()
	if err != nil {
		return err
	}

	var ack wire.AckResponse
	err = poster.Post(context.Background(), "/v1/sessions/"+scoreSession+"/score",
		wire.ScoreSessionRequest{
			SessionID:     scoreSession,
			TaskCompleted: scoreCompleted,
			Quality:       scoreQuality,
			Metrics:       metrics,
		}, &ack)
	if err != nil {
		return fmt.Errorf("score session %s: %w", scoreSession, err)
	}

	printOutcome(map[string]any{
		"session_id": scoreSession,
		"ok":         ack.OK,
		"message":    ack.Message,
	})
	return nil
}

// newPoster builds a raw transport from flags layered over config, for
// commands that address a session by ID rather than owning one.
func newPoster() (transport.Poster, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	host := cfg.Host
	if flagHost != "" {
		host = flagHost
	}
	port := cfg.Port
	if flagPort != 0 {
		port = flagPort
	}
	apiKey := cfg.APIKey
	if flagAPIKey != "" {
		apiKey = flagAPIKey
	}
	return transport.NewHTTP(transport.Options{
		Host:    host,
		Port:    port,
		APIKey:  apiKey,
		Timeout: cfg.Timeout,
	}), nil
}
