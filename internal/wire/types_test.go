package wire

import (
	"encoding/json"
	"testing"
)

func TestEncodeParams(t *testing.T) {
	got, err := EncodeParams(map[string]any{"pr": 42})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got != `{"pr":42}` {
		t.Errorf("encoded = %s, want {\"pr\":42}", got)
	}
}

func TestEncodeParamsNil(t *testing.T) {
	for _, params := range []map[string]any{nil, {}} {
		got, err := EncodeParams(params)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if got != "{}" {
			t.Errorf("encoded = %q, want {}", got)
		}
	}
}

func TestEncodeParamsUnencodable(t *testing.T) {
	if _, err := EncodeParams(map[string]any{"fn": func() {}}); err == nil {
		t.Fatal("functions are not JSON, expected an error")
	}
}

func TestEvaluateRequestFieldNames(t *testing.T) {
	raw, err := json.Marshal(EvaluateRequest{
		SessionID: "ses_1",
		AgentID:   "agent",
		Action:    Action{Type: "tool.call", Name: "x", ParamsJSON: "{}"},
		Context:   Context{SessionActionCount: 2},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	action, ok := m["action"].(map[string]any)
	if !ok {
		t.Fatalf("missing action object: %v", m)
	}
	if _, ok := action["params_json"]; !ok {
		t.Error("params field must be named params_json on the wire")
	}
	ctx, ok := m["context"].(map[string]any)
	if !ok {
		t.Fatalf("missing context object: %v", m)
	}
	if ctx["session_action_count"] != float64(2) {
		t.Errorf("session_action_count = %v", ctx["session_action_count"])
	}
}
