package agentwarden

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Run executes fn inside a managed session: the session is created and
// started, handed to fn, and ended when fn returns, whether it succeeded or
// not. The primary outcome wins: if fn failed, a failure to end the session
// is logged and discarded rather than replacing fn's error; if fn succeeded,
// the end failure is returned.
func (c *Client) Run(ctx context.Context, agentID string, fn func(ctx context.Context, s *Session) error, opts ...SessionOption) error {
	s := c.NewSession(agentID, opts...)
	if err := s.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx, s)

	if endErr := s.End(ctx); endErr != nil {
		if runErr != nil {
			c.logger.Warn("session end failed during teardown",
				zap.String("session_id", s.ID()),
				zap.Error(endErr),
			)
		} else {
			return endErr
		}
	}
	return runErr
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

// DefaultClient returns the process-wide client, creating it from
// auto-discovered configuration on first use. The instance is built once and
// reused for the life of the process; there is no teardown hook. Callers who
// need explicit wiring should construct their own Client and use Client.Run.
func DefaultClient() (*Client, error) {
	defaultOnce.Do(func() {
		defaultClient, defaultErr = New()
	})
	return defaultClient, defaultErr
}

// Governed is Client.Run on the process-wide default client.
func Governed(ctx context.Context, agentID string, fn func(ctx context.Context, s *Session) error, opts ...SessionOption) error {
	c, err := DefaultClient()
	if err != nil {
		return fmt.Errorf("agentwarden: default client: %w", err)
	}
	return c.Run(ctx, agentID, fn, opts...)
}
