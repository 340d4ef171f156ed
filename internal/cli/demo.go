package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	agentwarden "github.com/agentwarden/agentwarden-go"
)

var demoAgent string

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoAgent, "agent", "wardenctl-demo", "Agent ID for the demo session")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted governed session against the server",
	Long: "Walks one session through a representative mix of actions (a tool\n" +
		"call, an API request, a database query, an LLM call) and scores the\n" +
		"run. Denied actions are reported and skipped; the run continues.",
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	return client.Run(ctx, demoAgent,
		func(ctx context.Context, s *agentwarden.Session) error {
			fmt.Printf("session %s started\n", s.ID())

			steps := []struct {
				label string
				call  func() error
			}{
				{"tool slack.send_message", func() error {
					_, err := s.Tool(ctx, "slack.send_message",
						map[string]any{"channel": "#demo", "text": "hello from wardenctl"})
					return err
				}},
				{"api stripe.create_charge", func() error {
					_, err := s.APICall(ctx, "stripe.create_charge",
						map[string]any{"amount_usd": 125},
						agentwarden.WithTarget("api.stripe.com"))
					return err
				}},
				{"db SELECT", func() error {
					_, err := s.DBQuery(ctx, "SELECT id FROM users LIMIT 5",
						agentwarden.WithTarget("production.users"))
					return err
				}},
				{"llm gpt-4o", func() error {
					_, err := s.Chat(ctx, "gpt-4o")
					return err
				}},
			}

			denials := 0
			for _, step := range steps {
				err := step.call()
				switch {
				case err == nil:
					fmt.Printf("  allow  %s\n", step.label)
				case isDenied(err):
					denials++
					var denied *agentwarden.DeniedError
					errors.As(err, &denied)
					fmt.Printf("  deny   %s (policy %s)\n", step.label, denied.PolicyName)
					if denied.Terminated {
						return err
					}
				case isPending(err):
					fmt.Printf("  hold   %s\n", step.label)
				default:
					return err
				}
			}

			return s.Score(ctx, agentwarden.Score{
				TaskCompleted: denials == 0,
				Quality:       1.0 - float64(denials)/float64(len(steps)),
				Metrics:       map[string]string{"denials": fmt.Sprintf("%d", denials)},
			})
		},
		agentwarden.WithMetadata(map[string]string{"source": "wardenctl-demo"}),
	)
}
