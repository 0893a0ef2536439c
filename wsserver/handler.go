package wsserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joeshaw/envdecode"

	"github.com/gqlws/server-go/auth"
	"github.com/gqlws/server-go/gqlws"
	"github.com/gqlws/server-go/internal/logctx"
	"github.com/gqlws/server-go/sessions"
)

var _ http.Handler = (*Handler)(nil)

// Config carries the transport-level knobs. Defaults can be loaded from
// the environment via ConfigFromEnv.
type Config struct {
	// ConnectionInitTimeout closes connections that do not complete
	// initialization within the window. Zero disables the timeout.
	// ENV: GQLWS_CONNECTION_INIT_TIMEOUT
	ConnectionInitTimeout time.Duration `env:"GQLWS_CONNECTION_INIT_TIMEOUT,default=3s"`
	// ReadLimit bounds the size of a single inbound frame in bytes.
	// ENV: GQLWS_READ_LIMIT
	ReadLimit int64 `env:"GQLWS_READ_LIMIT,default=1048576"`
}

// DefaultConfig returns the defaults used when no Config is supplied.
func DefaultConfig() Config {
	return Config{ConnectionInitTimeout: 3 * time.Second, ReadLimit: 1 << 20}
}

// ConfigFromEnv builds a Config from environment variables, using the
// struct-tag defaults for anything unset.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config from env: %w", err)
	}
	return cfg, nil
}

// Option configures the Handler.
type Option func(*newConfig)

type newConfig struct {
	logger      *slog.Logger
	metrics     Metrics
	executor    Executor
	cfg         Config
	checkOrigin func(*http.Request) bool
}

// WithLogger sets the slog logger used by the server. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *newConfig) { c.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to a no-op.
func WithMetrics(m Metrics) Option {
	return func(c *newConfig) { c.metrics = m }
}

// WithExecutor sets the executor that runs subscribe operations after
// initialization. Without one, subscribes are answered with an error
// message.
func WithExecutor(e Executor) Option {
	return func(c *newConfig) { c.executor = e }
}

// WithConfig overrides the transport configuration.
func WithConfig(cfg Config) Option {
	return func(c *newConfig) { c.cfg = cfg }
}

// WithCheckOrigin overrides the upgrade origin check. The default
// accepts same-origin requests only, per gorilla's upgrader.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *newConfig) { c.checkOrigin = fn }
}

// Handler upgrades HTTP requests to graphql-transport-ws connections and
// serves them until the peer disconnects.
type Handler struct {
	log      *slog.Logger
	authn    auth.Authenticator
	authz    sessions.Authorizer
	metrics  Metrics
	executor Executor
	cfg      Config
	upgrader websocket.Upgrader
}

// New constructs a Handler.
//
// Required:
//   - authn: the authenticator consulted during initialization. Wrap it
//     in an auth.ModeSelector to support alternative auth modes.
//
// authz defaults to sessions.RoleAuthorizer when nil.
func New(authn auth.Authenticator, authz sessions.Authorizer, opts ...Option) (*Handler, error) {
	if authn == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	if authz == nil {
		authz = sessions.RoleAuthorizer{}
	}

	cfg := &newConfig{
		logger:  slog.Default(),
		metrics: noopMetrics{},
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &Handler{
		log:      slog.New(logctx.Handler{Handler: cfg.logger.Handler()}),
		authn:    authn,
		authz:    authz,
		metrics:  cfg.metrics,
		executor: cfg.executor,
		cfg:      cfg.cfg,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{gqlws.Subprotocol},
			CheckOrigin:  cfg.checkOrigin,
		},
	}
	return h, nil
}

// ServeHTTP implements http.Handler. It blocks for the lifetime of the
// connection; cancellation of the request context abandons any in-flight
// initialization work.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.String("err", err.Error()))
		return
	}

	conn := newConnection(h, ws, r)
	if ws.Subprotocol() != gqlws.Subprotocol {
		conn.closeWith(gqlws.SubprotocolNotAcceptable())
		_ = ws.Close()
		return
	}
	conn.run(r.Context())
}
