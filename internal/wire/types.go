// Package wire defines the JSON request and response bodies exchanged with
// the AgentWarden server. The shapes mirror the server's HTTP events API and
// must not drift from it.
package wire

import (
	"encoding/json"
	"fmt"
)

// Action describes one candidate action inside an evaluate or trace request.
type Action struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	ParamsJSON string `json:"params_json"`
	Target     string `json:"target"`
}

// Context is the cumulative session context attached to every evaluation.
type Context struct {
	SessionCost            float64 `json:"session_cost"`
	SessionActionCount     int     `json:"session_action_count"`
	SessionDurationSeconds int     `json:"session_duration_seconds"`
}

// EvaluateRequest is the body for POST /v1/events/evaluate and
// POST /v1/events/trace.
type EvaluateRequest struct {
	SessionID    string            `json:"session_id"`
	AgentID      string            `json:"agent_id"`
	AgentVersion string            `json:"agent_version"`
	Action       Action            `json:"action"`
	Context      Context           `json:"context"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// VerdictResponse is the body returned from POST /v1/events/evaluate.
type VerdictResponse struct {
	Verdict        string   `json:"verdict"`
	TraceID        string   `json:"trace_id,omitempty"`
	PolicyName     string   `json:"policy_name,omitempty"`
	Message        string   `json:"message,omitempty"`
	ApprovalID     string   `json:"approval_id,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
	LatencyMs      int      `json:"latency_ms,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// StartSessionRequest is the body for POST /v1/sessions/start.
type StartSessionRequest struct {
	SessionID    string            `json:"session_id"`
	AgentID      string            `json:"agent_id"`
	AgentVersion string            `json:"agent_version"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// StartSessionResponse acknowledges session registration.
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
}

// EndSessionRequest is the body for POST /v1/sessions/{id}/end.
type EndSessionRequest struct {
	SessionID string `json:"session_id"`
}

// EndSessionResponse is the server-side summary of a finished session.
type EndSessionResponse struct {
	SessionID       string  `json:"session_id"`
	TotalCost       float64 `json:"total_cost"`
	ActionCount     int     `json:"action_count"`
	DurationSeconds int     `json:"duration_seconds"`
	Status          string  `json:"status"`
}

// ScoreSessionRequest is the body for POST /v1/sessions/{id}/score.
type ScoreSessionRequest struct {
	SessionID     string            `json:"session_id"`
	TaskCompleted bool              `json:"task_completed"`
	Quality       float64           `json:"quality"`
	Metrics       map[string]string `json:"metrics,omitempty"`
}

// AckResponse is the generic acknowledgement body for fire-and-forget
// endpoints such as trace ingestion.
type AckResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// EncodeParams serializes action params for the params_json field.
// A nil or empty map encodes as "{}" so the server always receives an object.
func EncodeParams(params map[string]any) (string, error) {
	if len(params) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode action params: %w", err)
	}
	return string(raw), nil
}
