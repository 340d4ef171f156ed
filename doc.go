// Package agentwarden is the Go client SDK for the AgentWarden governance
// server. It routes an agent's externally visible actions (tool calls, API
// requests, database queries, LLM invocations) through remote policy
// evaluation before they execute.
//
// Usage:
//
//	client, err := agentwarden.New()
//	err = client.Run(ctx, "support-bot", func(ctx context.Context, s *agentwarden.Session) error {
//	    _, err := s.Tool(ctx, "github.merge_pr",
//	        map[string]any{"repo": "org/repo", "pr": 42},
//	        agentwarden.WithTarget("github.com/org/repo"),
//	        agentwarden.WithExec(agentwarden.Do(func() (any, error) {
//	            return github.Merge(42)
//	        })),
//	    )
//	    return err
//	})
//
// A denied action returns *DeniedError before the wrapped work runs; an
// action held for human approval returns *ApprovalPendingError. Both are
// distinct from transport failures, so callers can handle "blocked by
// policy" and "server unreachable" differently.
package agentwarden
