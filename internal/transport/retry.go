package transport

import (
	"context"
	"errors"

	"github.com/avast/retry-go/v5"
)

// Retrying re-sends failed requests with exponential backoff. Transport-level
// failures and 5xx replies are retried; 4xx replies are not, since repeating
// a rejected request cannot change the outcome.
type Retrying struct {
	next     Poster
	attempts uint
}

// WithRetry wraps next with up to attempts tries per request.
func WithRetry(next Poster, attempts uint) *Retrying {
	if attempts == 0 {
		attempts = 3
	}
	return &Retrying{next: next, attempts: attempts}
}

// Post implements Poster.
func (t *Retrying) Post(ctx context.Context, path string, in, out any) error {
	var permanent error

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(t.attempts),
	)
	err := r.Do(func() error {
		callErr := t.next.Post(ctx, path, in, out)
		if callErr != nil && !retryable(callErr) {
			permanent = callErr
			return nil // stop retrying, surface below
		}
		return callErr
	})

	if permanent != nil {
		return permanent
	}
	return err
}

// retryable reports whether the error is worth another attempt.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	// Network-level failure: the request may never have reached the server.
	return true
}
