// Package cli implements the wardenctl command: small operator tooling for
// exercising an AgentWarden server through the SDK.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	agentwarden "github.com/agentwarden/agentwarden-go"
)

var (
	flagHost   string
	flagPort   int
	flagAPIKey string
)

var rootCmd = &cobra.Command{
	Use:   "wardenctl",
	Short: "Client-side tooling for the AgentWarden governance server",
	Long: "Drives governed sessions against an AgentWarden server from the\n" +
		"command line: one-shot action evaluation, session scoring, and a\n" +
		"scripted demo run. Connection settings come from flags, then\n" +
		"agentwarden.yaml, then AGENTWARDEN_* environment variables.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "AgentWarden host (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "AgentWarden HTTP port (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Bearer credential (default from config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds a client from persistent flags layered over config.
func newClient() (*agentwarden.Client, error) {
	var opts []agentwarden.Option
	if flagHost != "" {
		opts = append(opts, agentwarden.WithHost(flagHost))
	}
	if flagPort != 0 {
		opts = append(opts, agentwarden.WithPort(flagPort))
	}
	if flagAPIKey != "" {
		opts = append(opts, agentwarden.WithAPIKey(flagAPIKey))
	}
	return agentwarden.New(opts...)
}
