package agentwarden

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Client at creation time. Options win over values from
// agentwarden.yaml and AGENTWARDEN_* environment variables.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	host       string
	port       int
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client

	logger     *zap.Logger
	registerer prometheus.Registerer

	retryAttempts uint
	breaker       bool
	rateRPS       float64
	rateBurst     int

	strictVerdicts bool
}

// WithHost sets the server host.
func WithHost(host string) Option {
	return func(c *clientConfig) { c.host = host }
}

// WithPort sets the server HTTP port.
func WithPort(port int) Option {
	return func(c *clientConfig) { c.port = port }
}

// WithBaseURL sets the full endpoint URL, overriding host and port. Useful
// for TLS endpoints and test servers.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithAPIKey sets the bearer credential attached to every request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithTimeout bounds each round-trip to the server.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithLogger injects a logger for best-effort paths (teardown failures,
// swallowed trace errors, unrecognized verdicts). Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithMetrics registers SDK metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) { c.registerer = reg }
}

// WithRetry enables transport retries, up to attempts tries per request.
// Retry is off by default: the core never retries on its own.
func WithRetry(attempts uint) Option {
	return func(c *clientConfig) { c.retryAttempts = attempts }
}

// WithBreaker enables a circuit breaker around the transport.
func WithBreaker() Option {
	return func(c *clientConfig) { c.breaker = true }
}

// WithRateLimit paces outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *clientConfig) { c.rateRPS, c.rateBurst = rps, burst }
}

// WithStrictVerdicts turns unrecognized verdict tags into denials instead of
// the default fail-open allow.
func WithStrictVerdicts() Option {
	return func(c *clientConfig) { c.strictVerdicts = true }
}

// SessionOption configures a single session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	agentVersion string
	metadata     map[string]string
}

// WithAgentVersion sets the governed agent's version string (default "v1").
func WithAgentVersion(version string) SessionOption {
	return func(s *sessionConfig) { s.agentVersion = version }
}

// WithMetadata attaches key-value metadata to the session. It is sent with
// every evaluation request and is immutable after session creation.
func WithMetadata(md map[string]string) SessionOption {
	return func(s *sessionConfig) { s.metadata = md }
}

// ActionOption configures a single governed action.
type ActionOption func(*actionConfig)

type actionConfig struct {
	target string
	exec   Work
}

// WithTarget names the resource the action touches (e.g. "github.com/org/repo",
// "production.users").
func WithTarget(target string) ActionOption {
	return func(a *actionConfig) { a.target = target }
}

// WithExec supplies the work to run if the action is allowed. Without it the
// action method only evaluates and returns nil.
func WithExec(w Work) ActionOption {
	return func(a *actionConfig) { a.exec = w }
}
