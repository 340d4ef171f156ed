package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	agentwarden "github.com/agentwarden/agentwarden-go"
)

// Exit codes so scripts can branch on the outcome without parsing output.
const (
	exitDenied  = 3
	exitPending = 4
)

var (
	evalAgent  string
	evalType   string
	evalName   string
	evalParams string
	evalTarget string
)

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalAgent, "agent", "wardenctl", "Agent ID for the one-shot session")
	evalCmd.Flags().StringVar(&evalType, "type", "tool.call", "Action type (tool.call|api.request|db.query|llm.chat)")
	evalCmd.Flags().StringVar(&evalName, "name", "", "Action name: tool/API name, SQL query, or model name (required)")
	evalCmd.Flags().StringVar(&evalParams, "params", "", "Action params as a JSON object")
	evalCmd.Flags().StringVar(&evalTarget, "target", "", "Target resource")
	evalCmd.MarkFlagRequired("name")
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a single action inside a one-shot session",
	Long: "Starts a session, submits one action for policy evaluation, and ends\n" +
		"the session. Nothing is executed.\n\n" +
		"Exit code 0 if allowed, 3 if denied or terminated, 4 if held for\n" +
		"human approval.",
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	params := map[string]any{}
	if evalParams != "" {
		if err := json.Unmarshal([]byte(evalParams), &params); err != nil {
			return fmt.Errorf("invalid --params: %w", err)
		}
	}

	ctx := context.Background()
	evalErr := client.Run(ctx, evalAgent, func(ctx context.Context, s *agentwarden.Session) error {
		var err error
		switch evalType {
		case "tool.call":
			_, err = s.Tool(ctx, evalName, params, agentwarden.WithTarget(evalTarget))
		case "api.request":
			_, err = s.APICall(ctx, evalName, params, agentwarden.WithTarget(evalTarget))
		case "db.query":
			_, err = s.DBQuery(ctx, evalName, agentwarden.WithTarget(evalTarget))
		case "llm.chat":
			_, err = s.Chat(ctx, evalName)
		default:
			return fmt.Errorf("unknown action type %q", evalType)
		}
		return err
	})

	switch {
	case evalErr == nil:
		printOutcome(map[string]any{"verdict": "allow", "name": evalName})
		return nil

	case isDenied(evalErr):
		var denied *agentwarden.DeniedError
		errors.As(evalErr, &denied)
		printOutcome(map[string]any{
			"verdict":     verdictLabel(denied),
			"policy_name": denied.PolicyName,
			"message":     denied.Message,
			"suggestions": denied.Suggestions,
		})
		os.Exit(exitDenied)

	case isPending(evalErr):
		var pending *agentwarden.ApprovalPendingError
		errors.As(evalErr, &pending)
		printOutcome(map[string]any{
			"verdict":         "approve",
			"approval_id":     pending.ApprovalID,
			"policy_name":     pending.PolicyName,
			"timeout_seconds": pending.TimeoutSeconds,
		})
		os.Exit(exitPending)
	}
	return evalErr
}

func isDenied(err error) bool {
	var denied *agentwarden.DeniedError
	return errors.As(err, &denied)
}

func isPending(err error) bool {
	var pending *agentwarden.ApprovalPendingError
	return errors.As(err, &pending)
}

func verdictLabel(denied *agentwarden.DeniedError) string {
	if denied.Terminated {
		return "terminate"
	}
	return "deny"
}

func printOutcome(v map[string]any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
