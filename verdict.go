package agentwarden

import (
	"fmt"

	"github.com/agentwarden/agentwarden-go/internal/wire"
)

// Verdict is the policy server's classification of a candidate action.
type Verdict string

const (
	VerdictAllow     Verdict = "allow"
	VerdictDeny      Verdict = "deny"
	VerdictApprove   Verdict = "approve"
	VerdictTerminate Verdict = "terminate"
)

// interpretVerdict maps a decoded evaluate response onto the error taxonomy:
// nil for allow, *DeniedError for deny/terminate, *ApprovalPendingError for
// approve. A missing verdict field means allow.
//
// An unrecognized tag also means allow unless strict is set. This fail-open
// default keeps agents running when the server speaks a newer dialect; it is
// an availability-over-safety trade, so strict mode turns unknown tags into
// denials instead.
func interpretVerdict(resp wire.VerdictResponse, strict bool) error {
	switch Verdict(resp.Verdict) {
	case VerdictAllow, "":
		return nil

	case VerdictDeny:
		return &DeniedError{
			PolicyName:  resp.PolicyName,
			Message:     orDefault(resp.Message, "action denied"),
			Suggestions: resp.Suggestions,
		}

	case VerdictTerminate:
		return &DeniedError{
			PolicyName:  resp.PolicyName,
			Message:     orDefault(resp.Message, "session terminated"),
			Suggestions: resp.Suggestions,
			Terminated:  true,
		}

	case VerdictApprove:
		return &ApprovalPendingError{
			ApprovalID:     resp.ApprovalID,
			PolicyName:     resp.PolicyName,
			TimeoutSeconds: resp.TimeoutSeconds,
		}

	default:
		if strict {
			return &DeniedError{
				PolicyName: "verdict.unrecognized",
				Message:    fmt.Sprintf("unrecognized verdict %q", resp.Verdict),
			}
		}
		return nil
	}
}

// knownVerdict reports whether tag is one of the four defined verdicts.
func knownVerdict(tag string) bool {
	switch Verdict(tag) {
	case VerdictAllow, VerdictDeny, VerdictApprove, VerdictTerminate, "":
		return true
	}
	return false
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
