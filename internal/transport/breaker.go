package transport

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker stops hammering an unreachable server. After six consecutive
// failures the circuit opens and requests fail fast until the cool-down
// window passes.
type Breaker struct {
	next Poster
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next with a circuit breaker.
func WithBreaker(next Poster, name string) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Post implements Poster.
func (t *Breaker) Post(ctx context.Context, path string, in, out any) error {
	_, err := t.cb.Execute(func() (interface{}, error) {
		return nil, t.next.Post(ctx, path, in, out)
	})
	return err
}
