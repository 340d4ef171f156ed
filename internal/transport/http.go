package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single round-trip to the server.
const DefaultTimeout = 30 * time.Second

// StatusError reports a non-2xx reply from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Options configures the HTTP poster.
type Options struct {
	// BaseURL wins over Host/Port when set (e.g. an https endpoint).
	BaseURL string
	Host    string
	Port    int
	APIKey  string
	Timeout time.Duration
	// Client overrides the underlying http.Client, mainly for tests.
	Client *http.Client
}

// HTTP posts JSON bodies to the AgentWarden HTTP events API.
type HTTP struct {
	base   string
	apiKey string
	client *http.Client
}

// NewHTTP creates a poster for the given endpoint.
func NewHTTP(opts Options) *HTTP {
	base := opts.BaseURL
	if base == "" {
		base = fmt.Sprintf("http://%s:%d", opts.Host, opts.Port)
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{base: base, apiKey: opts.APIKey, client: client}
}

// Post implements Poster. The API key, when configured, is attached as a
// bearer token. out may be nil when the caller does not need the reply body.
func (t *HTTP) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
	}
	return nil
}
