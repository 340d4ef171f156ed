// Package httpware gates outbound HTTP traffic through a governed session.
// Install GovernedTransport on an http.Client used by an agent and every
// request becomes an api.request evaluation before any bytes leave the
// process.
package httpware

import (
	"fmt"
	"net"
	"net/http"

	agentwarden "github.com/agentwarden/agentwarden-go"
)

// GovernedTransport is an http.RoundTripper that evaluates each request
// against policy before delegating to Base. Denied requests are never sent;
// the caller receives the *DeniedError (or *ApprovalPendingError) directly.
type GovernedTransport struct {
	Session *agentwarden.Session
	// Base handles allowed requests. Defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// NewTransport wraps base with policy evaluation on session.
func NewTransport(session *agentwarden.Session, base http.RoundTripper) *GovernedTransport {
	return &GovernedTransport{Session: session, Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *GovernedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	host := hostOnly(req)
	params := map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	}
	if req.ContentLength > 0 {
		params["content_length"] = req.ContentLength
	}

	res, err := t.Session.APICall(req.Context(), req.Method+" "+host, params,
		agentwarden.WithTarget(host),
		agentwarden.WithExec(agentwarden.Do(func() (any, error) {
			return base.RoundTrip(req)
		})),
	)
	if err != nil {
		return nil, err
	}

	resp, ok := res.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("httpware: unexpected result type %T", res)
	}
	return resp, nil
}

// hostOnly strips the port from the request host.
func hostOnly(req *http.Request) string {
	host := req.URL.Host
	if host == "" {
		host = req.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
