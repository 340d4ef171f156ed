package agentwarden

import (
	"errors"
	"fmt"
)

// Session lifecycle misuse. These indicate a caller bug, not a server
// decision.
var (
	ErrNotStarted     = errors.New("agentwarden: session not started")
	ErrAlreadyStarted = errors.New("agentwarden: session already started")
	ErrEnded          = errors.New("agentwarden: session already ended")
)

// DeniedError is returned when policy denies or terminates an action. The
// wrapped work is never executed.
type DeniedError struct {
	PolicyName  string
	Message     string
	Suggestions []string

	// Terminated is set for a terminate verdict: the server wants the whole
	// session stopped, not just this action skipped.
	Terminated bool
}

func (e *DeniedError) Error() string {
	verb := "denied"
	if e.Terminated {
		verb = "terminated"
	}
	if e.PolicyName == "" {
		return fmt.Sprintf("agentwarden: action %s: %s", verb, e.Message)
	}
	return fmt.Sprintf("agentwarden: action %s by policy %q: %s", verb, e.PolicyName, e.Message)
}

// ApprovalPendingError is returned when an action requires human approval.
// It is a control-flow signal rather than a fault: the action has not been
// rejected, but it must not run until someone approves it. The SDK does not
// poll for resolution; callers decide whether and when to retry.
type ApprovalPendingError struct {
	ApprovalID     string
	PolicyName     string
	TimeoutSeconds int
}

func (e *ApprovalPendingError) Error() string {
	return fmt.Sprintf("agentwarden: action pending approval %s (policy %q, window %ds)",
		e.ApprovalID, e.PolicyName, e.TimeoutSeconds)
}
