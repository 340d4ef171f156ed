package transport

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited paces outgoing requests so a busy agent cannot flood the
// policy server.
type RateLimited struct {
	next    Poster
	limiter *rate.Limiter
}

// WithRateLimit wraps next with a token-bucket limiter.
func WithRateLimit(next Poster, rps float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Post implements Poster. Blocks until a token is available or ctx is done.
func (t *RateLimited) Post(ctx context.Context, path string, in, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return t.next.Post(ctx, path, in, out)
}
