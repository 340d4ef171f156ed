package agentwarden

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agentwarden/agentwarden-go/internal/config"
	"github.com/agentwarden/agentwarden-go/internal/metrics"
	"github.com/agentwarden/agentwarden-go/internal/transport"
	"github.com/agentwarden/agentwarden-go/internal/wire"
)

// Client talks to one AgentWarden server. It is safe for concurrent use and
// is shared by any number of independent sessions.
type Client struct {
	cfg     clientConfig
	post    transport.Poster
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a client. Without options it auto-discovers the server from
// agentwarden.yaml and AGENTWARDEN_* environment variables, falling back to
// localhost:6777.
func New(opts ...Option) (*Client, error) {
	fileCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("agentwarden: %w", err)
	}

	cfg := clientConfig{
		host:    fileCfg.Host,
		port:    fileCfg.Port,
		apiKey:  fileCfg.APIKey,
		timeout: fileCfg.Timeout,
	}
	for _, o := range opts {
		o(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var post transport.Poster = transport.NewHTTP(transport.Options{
		BaseURL: cfg.baseURL,
		Host:    cfg.host,
		Port:    cfg.port,
		APIKey:  cfg.apiKey,
		Timeout: cfg.timeout,
		Client:  cfg.httpClient,
	})
	// Innermost to outermost: retry, breaker, rate limit. All opt-in.
	if cfg.retryAttempts > 0 {
		post = transport.WithRetry(post, cfg.retryAttempts)
	}
	if cfg.breaker {
		post = transport.WithBreaker(post, "agentwarden")
	}
	if cfg.rateRPS > 0 {
		post = transport.WithRateLimit(post, cfg.rateRPS, cfg.rateBurst)
	}

	return &Client{
		cfg:     cfg,
		post:    post,
		logger:  logger,
		metrics: metrics.New(cfg.registerer),
	}, nil
}

// interpret applies the verdict interpreter with this client's settings and
// makes the fail-open path observable.
func (c *Client) interpret(resp wire.VerdictResponse) error {
	if !knownVerdict(resp.Verdict) && !c.cfg.strictVerdicts {
		c.logger.Warn("unrecognized verdict, failing open",
			zap.String("verdict", resp.Verdict),
			zap.String("policy_name", resp.PolicyName),
			zap.String("trace_id", resp.TraceID),
		)
	}
	return interpretVerdict(resp, c.cfg.strictVerdicts)
}
