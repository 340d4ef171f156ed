package agentwarden

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentwarden/agentwarden-go/internal/wire"
)

func TestUnknownVerdictFailsOpenOverWire(t *testing.T) {
	fs := newFakeServer(t)
	fs.setVerdict(wire.VerdictResponse{Verdict: "quarantine", PolicyName: "future-policy"})
	s := startedSession(t, fs)

	calls := 0
	result, err := s.Tool(context.Background(), "anything", nil,
		WithExec(Do(func() (any, error) {
			calls++
			return "ran", nil
		})),
	)
	if err != nil {
		t.Fatalf("unknown verdict should fail open, got %v", err)
	}
	if calls != 1 || result != "ran" {
		t.Errorf("work should have run once, calls=%d result=%v", calls, result)
	}
}

func TestUnknownVerdictLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	fs := newFakeServer(t)
	fs.setVerdict(wire.VerdictResponse{Verdict: "quarantine"})
	c := newTestClient(t, fs, WithLogger(zap.New(core)))
	s := c.NewSession("test-agent")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if _, err := s.Tool(context.Background(), "anything", nil); err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}

	entries := logs.FilterMessage("unrecognized verdict, failing open").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["verdict"]; got != "quarantine" {
		t.Errorf("warning verdict field = %v", got)
	}
}

func TestStrictVerdictsDenyUnknown(t *testing.T) {
	fs := newFakeServer(t)
	fs.setVerdict(wire.VerdictResponse{Verdict: "quarantine"})
	c := newTestClient(t, fs, WithStrictVerdicts())
	s := c.NewSession("test-agent")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	executed := false
	_, err := s.Tool(context.Background(), "anything", nil,
		WithExec(Do(func() (any, error) {
			executed = true
			return nil, nil
		})),
	)
	denied := requireDenied(t, err)
	if denied.PolicyName != "verdict.unrecognized" {
		t.Errorf("policy name = %q", denied.PolicyName)
	}
	if executed {
		t.Error("strict mode must not execute work on unknown verdicts")
	}
}

func TestMetricsRecordEvaluations(t *testing.T) {
	reg := prometheus.NewRegistry()

	fs := newFakeServer(t)
	c := newTestClient(t, fs, WithMetrics(reg))
	s := c.NewSession("test-agent")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := s.Tool(context.Background(), "noop", nil); err != nil {
		t.Fatalf("tool call failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "agentwarden_evaluations_total" {
			found = true
		}
	}
	if !found {
		t.Error("agentwarden_evaluations_total not registered")
	}
}
