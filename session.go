package agentwarden

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentwarden/agentwarden-go/internal/wire"
)

type sessionState int

const (
	stateUnstarted sessionState = iota
	stateActive
	stateEnded
)

// Session is one governed execution of an agent. Every tool call, API
// request, database query, and LLM invocation made through it is evaluated
// against server policy before execution.
//
// A session is single-use: Start exactly once, actions, End exactly once.
// Concurrent calls on one session are not a supported pattern; the session
// serializes its bookkeeping so misuse cannot corrupt counters, but request
// ordering is then undefined. Use one session per logical run and as many
// sessions as you like per client.
type Session struct {
	client *Client

	id           string
	agentID      string
	agentVersion string
	metadata     map[string]string

	mu          sync.Mutex
	state       sessionState
	cost        float64
	actionCount int
	startedAt   time.Time
}

// NewSession constructs an unstarted session for the given agent. The
// session ID is generated client-side and never changes.
func (c *Client) NewSession(agentID string, opts ...SessionOption) *Session {
	cfg := sessionConfig{agentVersion: "v1"}
	for _, o := range opts {
		o(&cfg)
	}

	md := make(map[string]string, len(cfg.metadata))
	for k, v := range cfg.metadata {
		md[k] = v
	}

	return &Session{
		client:       c,
		id:           newSessionID(),
		agentID:      agentID,
		agentVersion: cfg.agentVersion,
		metadata:     md,
	}
}

func newSessionID() string {
	u := uuid.New()
	return "ses_" + hex.EncodeToString(u[:4])
}

// ID returns the session's correlation token.
func (s *Session) ID() string { return s.id }

// AgentID returns the governed agent's identity.
func (s *Session) AgentID() string { return s.agentID }

// Start registers the session with the server. It must be called exactly
// once before any action method. A transport failure here is fatal to the
// session: it stays unstarted and may not issue actions.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case stateActive:
		s.mu.Unlock()
		return ErrAlreadyStarted
	case stateEnded:
		s.mu.Unlock()
		return ErrEnded
	}
	startedAt := time.Now()
	s.mu.Unlock()

	var resp wire.StartSessionResponse
	err := s.client.post.Post(ctx, "/v1/sessions/start", wire.StartSessionRequest{
		SessionID:    s.id,
		AgentID:      s.agentID,
		AgentVersion: s.agentVersion,
		Metadata:     s.metadata,
	}, &resp)
	if err != nil {
		return fmt.Errorf("start session %s: %w", s.id, err)
	}

	s.mu.Lock()
	s.state = stateActive
	s.startedAt = startedAt
	s.mu.Unlock()

	s.client.logger.Debug("session started",
		zap.String("session_id", s.id),
		zap.String("agent_id", s.agentID),
	)
	return nil
}

// End closes the session with the server. It is safe to call from cleanup
// paths regardless of whether earlier actions failed; calling it again after
// it has run is a no-op. Ending a session that was never started is a caller
// error.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case stateUnstarted:
		s.mu.Unlock()
		return ErrNotStarted
	case stateEnded:
		s.mu.Unlock()
		return nil
	}
	// Single-use: no path back to active, even if the end request fails.
	s.state = stateEnded
	s.mu.Unlock()

	var resp wire.EndSessionResponse
	err := s.client.post.Post(ctx, "/v1/sessions/"+s.id+"/end", wire.EndSessionRequest{
		SessionID: s.id,
	}, &resp)
	if err != nil {
		return fmt.Errorf("end session %s: %w", s.id, err)
	}

	s.client.logger.Debug("session ended",
		zap.String("session_id", s.id),
		zap.Int("action_count", resp.ActionCount),
		zap.String("status", resp.Status),
	)
	return nil
}

// Tool evaluates and, if allowed, executes a tool call.
//
//	result, err := s.Tool(ctx, "slack.send_message",
//	    map[string]any{"channel": "#ops", "text": msg},
//	    agentwarden.WithExec(agentwarden.Do(func() (any, error) { return slack.Send(msg) })),
//	)
func (s *Session) Tool(ctx context.Context, name string, params map[string]any, opts ...ActionOption) (any, error) {
	return s.action(ctx, "tool.call", name, params, opts...)
}

// APICall evaluates and, if allowed, executes an outbound API request.
func (s *Session) APICall(ctx context.Context, name string, params map[string]any, opts ...ActionOption) (any, error) {
	return s.action(ctx, "api.request", name, params, opts...)
}

// DBQuery evaluates and, if allowed, executes a database query. The query
// string itself is what policy sees.
func (s *Session) DBQuery(ctx context.Context, query string, opts ...ActionOption) (any, error) {
	return s.action(ctx, "db.query", "db.query", map[string]any{"query": query}, opts...)
}

// Chat evaluates and, if allowed, executes an LLM call. Only the model name
// is evaluated; message contents never leave the process. Model calls carry
// no target.
func (s *Session) Chat(ctx context.Context, model string, opts ...ActionOption) (any, error) {
	cfg := actionConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	cfg.target = ""
	return s.evaluate(ctx, "llm.chat", "llm.chat."+model, map[string]any{"model": model}, cfg)
}

func (s *Session) action(ctx context.Context, actionType, name string, params map[string]any, opts ...ActionOption) (any, error) {
	cfg := actionConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	return s.evaluate(ctx, actionType, name, params, cfg)
}

// evaluate is the shared protocol behind all four action methods: snapshot
// context, count the action, ask the server, interpret the verdict, run the
// caller's work.
func (s *Session) evaluate(ctx context.Context, actionType, name string, params map[string]any, cfg actionConfig) (any, error) {
	s.mu.Lock()
	switch s.state {
	case stateUnstarted:
		s.mu.Unlock()
		return nil, ErrNotStarted
	case stateEnded:
		s.mu.Unlock()
		return nil, ErrEnded
	}
	// The request carries the context as it stood before this action; the
	// counter advances regardless of how the round-trip goes. Counting is
	// local bookkeeping, not a server acknowledgment.
	snapshot := wire.Context{
		SessionCost:            s.cost,
		SessionActionCount:     s.actionCount,
		SessionDurationSeconds: int(time.Since(s.startedAt).Seconds()),
	}
	s.actionCount++
	s.mu.Unlock()

	paramsJSON, err := wire.EncodeParams(params)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", name, err)
	}

	req := wire.EvaluateRequest{
		SessionID:    s.id,
		AgentID:      s.agentID,
		AgentVersion: s.agentVersion,
		Action: wire.Action{
			Type:       actionType,
			Name:       name,
			ParamsJSON: paramsJSON,
			Target:     cfg.target,
		},
		Context:  snapshot,
		Metadata: s.metadata,
	}

	start := time.Now()
	var resp wire.VerdictResponse
	if err := s.client.post.Post(ctx, "/v1/events/evaluate", req, &resp); err != nil {
		s.client.metrics.IncTransportError()
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}
	s.client.metrics.ObserveEvaluate(actionType, resp.Verdict, time.Since(start))

	if err := s.client.interpret(resp); err != nil {
		return nil, err
	}

	if cfg.exec == nil {
		return nil, nil
	}
	return cfg.exec.run(ctx)
}

// TokenUsage is token accounting extracted from a model response.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
}

// TraceLLM records a model call passively, without policy evaluation. It is
// best-effort instrumentation: it never gates anything, never returns an
// error, and missing usage data is fine. Failures are logged at debug level
// and swallowed.
func (s *Session) TraceLLM(ctx context.Context, model string, usage *TokenUsage) {
	s.mu.Lock()
	active := s.state == stateActive
	s.mu.Unlock()
	if !active {
		s.client.logger.Debug("trace skipped, session not active", zap.String("session_id", s.id))
		return
	}

	params := map[string]any{"model": model}
	if usage != nil {
		params["prompt_tokens"] = usage.PromptTokens
		params["completion_tokens"] = usage.CompletionTokens
	}
	paramsJSON, err := wire.EncodeParams(params)
	if err != nil {
		s.client.logger.Debug("trace encode failed", zap.Error(err))
		return
	}

	req := wire.EvaluateRequest{
		SessionID:    s.id,
		AgentID:      s.agentID,
		AgentVersion: s.agentVersion,
		Action: wire.Action{
			Type:       "llm.chat",
			Name:       "llm.chat." + model,
			ParamsJSON: paramsJSON,
		},
		Metadata: s.metadata,
	}

	var ack wire.AckResponse
	if err := s.client.post.Post(ctx, "/v1/events/trace", req, &ack); err != nil {
		s.client.logger.Debug("trace ingestion failed",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
	}
}

// Score is the terminal outcome report for a session.
type Score struct {
	TaskCompleted bool
	// Quality is a score in [0,1].
	Quality float64
	Metrics map[string]string
}

// Score reports the session's outcome to the server. It gates nothing and is
// typically called once at the end of a run, on both success and failure
// paths, with different values.
func (s *Session) Score(ctx context.Context, score Score) error {
	var ack wire.AckResponse
	err := s.client.post.Post(ctx, "/v1/sessions/"+s.id+"/score", wire.ScoreSessionRequest{
		SessionID:     s.id,
		TaskCompleted: score.TaskCompleted,
		Quality:       score.Quality,
		Metrics:       score.Metrics,
	}, &ack)
	if err != nil {
		return fmt.Errorf("score session %s: %w", s.id, err)
	}
	return nil
}
