package agentwarden

import (
	"errors"
	"testing"

	"github.com/agentwarden/agentwarden-go/internal/wire"
)

func TestInterpretAllow(t *testing.T) {
	if err := interpretVerdict(wire.VerdictResponse{Verdict: "allow"}, false); err != nil {
		t.Fatalf("allow should map to nil, got %v", err)
	}
}

func TestInterpretMissingVerdictIsAllow(t *testing.T) {
	// Fail-open: an empty verdict field means the action proceeds.
	if err := interpretVerdict(wire.VerdictResponse{}, false); err != nil {
		t.Fatalf("missing verdict should map to nil, got %v", err)
	}
}

func TestInterpretDeny(t *testing.T) {
	err := interpretVerdict(wire.VerdictResponse{
		Verdict:     "deny",
		PolicyName:  "no-prod-deletes",
		Message:     "drop blocked",
		Suggestions: []string{"use staging"},
	}, false)

	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *DeniedError, got %T", err)
	}
	if denied.PolicyName != "no-prod-deletes" || denied.Message != "drop blocked" {
		t.Errorf("fields not carried: %+v", denied)
	}
	if denied.Terminated {
		t.Error("deny must not set Terminated")
	}
}

func TestInterpretDenyDefaultMessage(t *testing.T) {
	err := interpretVerdict(wire.VerdictResponse{Verdict: "deny"}, false)
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *DeniedError, got %T", err)
	}
	if denied.Message != "action denied" {
		t.Errorf("default message = %q", denied.Message)
	}
}

func TestInterpretTerminate(t *testing.T) {
	err := interpretVerdict(wire.VerdictResponse{Verdict: "terminate", PolicyName: "budget"}, false)
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *DeniedError, got %T", err)
	}
	if !denied.Terminated {
		t.Error("terminate must set Terminated")
	}
	if denied.Message != "session terminated" {
		t.Errorf("default message = %q", denied.Message)
	}
}

func TestInterpretApprove(t *testing.T) {
	err := interpretVerdict(wire.VerdictResponse{
		Verdict:        "approve",
		ApprovalID:     "apr_1",
		PolicyName:     "hitl",
		TimeoutSeconds: 120,
	}, false)

	var pending *ApprovalPendingError
	if !errors.As(err, &pending) {
		t.Fatalf("expected *ApprovalPendingError, got %T", err)
	}
	if pending.ApprovalID != "apr_1" || pending.TimeoutSeconds != 120 {
		t.Errorf("fields not carried: %+v", pending)
	}
}

func TestInterpretUnknownFailsOpen(t *testing.T) {
	if err := interpretVerdict(wire.VerdictResponse{Verdict: "quarantine"}, false); err != nil {
		t.Fatalf("unknown verdict should fail open, got %v", err)
	}
}

func TestInterpretUnknownStrict(t *testing.T) {
	err := interpretVerdict(wire.VerdictResponse{Verdict: "quarantine"}, true)
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("strict mode should deny unknown verdicts, got %T", err)
	}
	if denied.PolicyName != "verdict.unrecognized" {
		t.Errorf("policy name = %q", denied.PolicyName)
	}
}

func TestKnownVerdict(t *testing.T) {
	for _, tag := range []string{"allow", "deny", "approve", "terminate", ""} {
		if !knownVerdict(tag) {
			t.Errorf("%q should be known", tag)
		}
	}
	if knownVerdict("quarantine") {
		t.Error("quarantine should be unknown")
	}
}
