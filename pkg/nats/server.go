package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel"

	"github.com/plaenen/commandkit/pkg/command"
	"github.com/plaenen/commandkit/pkg/credentials"
	"github.com/plaenen/commandkit/pkg/observability"
)

// ServerConfig configures the command server. Every field can come from the
// environment via ServerConfigFromEnv.
type ServerConfig struct {
	// URL is the NATS server to connect to.
	URL string `env:"COMMANDKIT_NATS_URL" envDefault:"nats://localhost:4222"`

	// Name identifies the micro service. Letters, digits, dashes and
	// underscores only.
	Name string `env:"COMMANDKIT_SERVICE_NAME" envDefault:"commandkit"`

	// Version is the micro service version (semver).
	Version string `env:"COMMANDKIT_SERVICE_VERSION" envDefault:"1.0.0"`

	// Description is published in the micro service info.
	Description string `env:"COMMANDKIT_SERVICE_DESCRIPTION"`

	// SubjectPrefix is prepended to every command name to form its subject:
	// "<prefix>.<command-name>". The manifest listing answers on
	// "<prefix>.manifest".
	SubjectPrefix string `env:"COMMANDKIT_SUBJECT_PREFIX" envDefault:"commands"`

	// QueueGroup load-balances requests across server instances.
	QueueGroup string `env:"COMMANDKIT_QUEUE_GROUP" envDefault:"commandkit-servers"`

	// HandlerTimeout bounds one dispatched run.
	HandlerTimeout time.Duration `env:"COMMANDKIT_HANDLER_TIMEOUT" envDefault:"30s"`
}

// DefaultServerConfig returns the defaults documented on ServerConfig.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		URL:            nats.DefaultURL,
		Name:           "commandkit",
		Version:        "1.0.0",
		SubjectPrefix:  "commands",
		QueueGroup:     "commandkit-servers",
		HandlerTimeout: 30 * time.Second,
	}
}

// ServerConfigFromEnv reads the COMMANDKIT_* environment variables.
func ServerConfigFromEnv() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("nats: parse server config: %w", err)
	}
	return cfg, nil
}

// Server exposes every command of a registry over NATS. It implements
// runner.Service, so it slots directly into a service runner.
type Server struct {
	cfg      ServerConfig
	registry *command.Registry
	logger   *slog.Logger
	tel      *observability.Telemetry
	creds    credentials.Provider

	mu      sync.Mutex
	nc      *nats.Conn
	ownConn bool
	svc     micro.Service
	baseCtx context.Context
	cancel  context.CancelFunc
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the slog logger. Defaults to slog.Default().
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithServerTelemetry enables trace propagation and span creation around
// dispatches.
func WithServerTelemetry(tel *observability.Telemetry) ServerOption {
	return func(s *Server) { s.tel = tel }
}

// WithServerCredentials authenticates the NATS connection with credentials
// from the provider.
func WithServerCredentials(p credentials.Provider) ServerOption {
	return func(s *Server) { s.creds = p }
}

// WithServerConn reuses an existing NATS connection instead of dialing. The
// caller keeps ownership; Stop will not close it.
func WithServerConn(nc *nats.Conn) ServerOption {
	return func(s *Server) { s.nc = nc }
}

// NewServer creates a command server over the registry. Commands registered
// after Start are not exposed.
func NewServer(cfg ServerConfig, registry *command.Registry, opts ...ServerOption) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements runner.Service.
func (s *Server) Name() string {
	return "nats-command-server"
}

// Start connects to NATS and publishes one endpoint per registered command
// plus the manifest endpoint. It returns once all endpoints are subscribed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return errors.New("nats: server already started")
	}
	if s.registry == nil || s.registry.Size() == 0 {
		return errors.New("nats: no commands registered")
	}

	if s.nc == nil {
		nc, err := dial(ctx, s.cfg.URL, s.cfg.Name, s.creds, s.logger)
		if err != nil {
			return err
		}
		s.nc = nc
		s.ownConn = true
	}

	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	svc, err := micro.AddService(s.nc, micro.Config{
		Name:        s.cfg.Name,
		Version:     s.cfg.Version,
		Description: s.cfg.Description,
		QueueGroup:  s.cfg.QueueGroup,
	})
	if err != nil {
		s.closeConn()
		return fmt.Errorf("nats: add service: %w", err)
	}

	names := s.registry.Names()
	for _, name := range names {
		name := name
		// Endpoint names cannot contain dots; the subject keeps them.
		endpoint := strings.ReplaceAll(name, ".", "-")
		subject := s.cfg.SubjectPrefix + "." + name
		err := svc.AddEndpoint(endpoint,
			micro.HandlerFunc(func(req micro.Request) { s.handle(req, name) }),
			micro.WithEndpointSubject(subject),
		)
		if err != nil {
			_ = svc.Stop()
			s.closeConn()
			return fmt.Errorf("nats: add endpoint %s: %w", name, err)
		}
	}

	err = svc.AddEndpoint(ManifestEndpoint,
		micro.HandlerFunc(s.handleManifest),
		micro.WithEndpointSubject(s.cfg.SubjectPrefix+"."+ManifestEndpoint),
	)
	if err != nil {
		_ = svc.Stop()
		s.closeConn()
		return fmt.Errorf("nats: add manifest endpoint: %w", err)
	}

	s.svc = svc
	s.logger.InfoContext(ctx, "nats command server started",
		"service", s.cfg.Name,
		"subject_prefix", s.cfg.SubjectPrefix,
		"commands", len(names),
	)
	return nil
}

// Stop unsubscribes the endpoints and closes the connection when the server
// dialed it.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.svc != nil {
		if err := s.svc.Stop(); err != nil {
			s.logger.ErrorContext(ctx, "stopping nats service", "error", err)
		}
		s.svc = nil
	}
	s.closeConn()
	s.logger.InfoContext(ctx, "nats command server stopped", "service", s.cfg.Name)
	return nil
}

// HealthCheck implements runner.HealthChecker.
func (s *Server) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nc == nil || !s.nc.IsConnected() {
		return errors.New("nats: not connected")
	}
	return nil
}

func (s *Server) closeConn() {
	if s.nc != nil && s.ownConn {
		s.nc.Close()
	}
	if s.ownConn {
		s.nc = nil
		s.ownConn = false
	}
}

// handle dispatches one request to the named command and answers with an
// envelope. Expected failures travel inside the envelope; faults become
// micro error responses.
func (s *Server) handle(req micro.Request, name string) {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.HandlerTimeout)
	defer cancel()

	if s.tel != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, microHeaderCarrier{headers: req.Headers()})
	}
	if id := req.Headers().Get(HeaderCorrelationID); id != "" {
		ctx = command.WithCorrelationID(ctx, id)
	}
	if id := req.Headers().Get(HeaderPrincipalID); id != "" {
		ctx = command.WithPrincipalID(ctx, id)
	}

	attrs, err := decodeAttributes(req.Data())
	if err != nil {
		s.respond(req, &Envelope{
			Success: false,
			Errors: []*command.Error{command.NewRuntimeError(
				"malformed_request",
				fmt.Sprintf("attributes payload is not a JSON object: %v", err),
				command.WithHalt(),
			)},
		})
		return
	}

	outcome, err := s.registry.Run(ctx, name, attrs)
	if err != nil {
		s.logger.ErrorContext(ctx, "command dispatch faulted",
			"command", name,
			"error", err,
		)
		if errors.Is(err, command.ErrCommandNotFound) {
			_ = req.Error("404", err.Error(), nil)
			return
		}
		_ = req.Error("500", err.Error(), nil)
		return
	}

	envelope, err := envelopeFor(outcome)
	if err != nil {
		s.logger.ErrorContext(ctx, "encoding command result",
			"command", name,
			"error", err,
		)
		_ = req.Error("500", fmt.Sprintf("encode result: %v", err), nil)
		return
	}
	s.respond(req, envelope)
}

func (s *Server) handleManifest(req micro.Request) {
	data, err := json.Marshal(s.registry.Manifests())
	if err != nil {
		_ = req.Error("500", fmt.Sprintf("encode manifests: %v", err), nil)
		return
	}
	if err := req.Respond(data); err != nil {
		s.logger.Error("sending manifest response", "error", err)
	}
}

func (s *Server) respond(req micro.Request, envelope *Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		_ = req.Error("500", fmt.Sprintf("encode envelope: %v", err), nil)
		return
	}
	if err := req.Respond(data); err != nil {
		s.logger.Error("sending command response", "error", err)
	}
}

// decodeAttributes parses the request body. Empty bodies mean "no
// attributes", matching commands whose inputs are all optional.
func decodeAttributes(data []byte) (command.Attributes, error) {
	if len(data) == 0 {
		return command.Attributes{}, nil
	}
	var attrs command.Attributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = command.Attributes{}
	}
	return attrs, nil
}

// microHeaderCarrier adapts micro.Headers to the OpenTelemetry text map
// carrier so trace context survives the transport hop.
type microHeaderCarrier struct {
	headers micro.Headers
}

func (c microHeaderCarrier) Get(key string) string {
	return c.headers.Get(key)
}

func (c microHeaderCarrier) Set(key, value string) {
	c.headers[key] = []string{value}
}

func (c microHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for k := range c.headers {
		keys = append(keys, k)
	}
	return keys
}
