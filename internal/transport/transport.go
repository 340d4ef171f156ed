// Package transport issues authenticated requests against the AgentWarden
// server and decodes JSON responses. Sessions depend only on the Poster
// interface; the concrete HTTP client and its resilience decorators live
// here so the core protocol stays free of I/O details.
package transport

import "context"

// Poster sends one JSON body to a server path and decodes the reply into out.
// Implementations must be safe for concurrent use by many sessions.
type Poster interface {
	Post(ctx context.Context, path string, in, out any) error
}
