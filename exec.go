package agentwarden

import "context"

// Result carries the outcome of work completing on a channel.
type Result struct {
	Value any
	Err   error
}

// Work is a unit of caller work gated behind policy evaluation. The caller
// picks the shape at the call site via Do, DoCtx, or AwaitChan; the session
// only ever sees "run to completion, get result or error". Errors from the
// work propagate to the session's caller unmodified.
type Work interface {
	run(ctx context.Context) (any, error)
}

// Do wraps a synchronous function.
func Do(fn func() (any, error)) Work { return syncWork(fn) }

// DoCtx wraps a context-aware function.
func DoCtx(fn func(ctx context.Context) (any, error)) Work { return ctxWork(fn) }

// AwaitChan wraps work that is already in flight: the session suspends until
// a Result arrives on ch or ctx is done.
func AwaitChan(ch <-chan Result) Work { return chanWork(ch) }

type syncWork func() (any, error)

func (w syncWork) run(ctx context.Context) (any, error) {
	v, err := w()
	return resolveNested(ctx, v, err)
}

type ctxWork func(ctx context.Context) (any, error)

func (w ctxWork) run(ctx context.Context) (any, error) {
	v, err := w(ctx)
	return resolveNested(ctx, v, err)
}

type chanWork <-chan Result

func (w chanWork) run(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-w:
		return res.Value, res.Err
	}
}

// resolveNested handles a synchronous call that itself produced something
// awaitable: a Work or a Result channel. One extra level only; a plain value
// passes through untouched.
func resolveNested(ctx context.Context, v any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	switch inner := v.(type) {
	case Work:
		return inner.run(ctx)
	case <-chan Result:
		return chanWork(inner).run(ctx)
	case chan Result:
		return chanWork(inner).run(ctx)
	}
	return v, nil
}
