package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/plaenen/commandkit/pkg/command"
	"github.com/plaenen/commandkit/pkg/credentials"
	"github.com/plaenen/commandkit/pkg/observability"
)

// ClientConfig configures the command client.
type ClientConfig struct {
	// URL is the NATS server to connect to.
	URL string `env:"COMMANDKIT_NATS_URL" envDefault:"nats://localhost:4222"`

	// Name identifies the connection on the server side.
	Name string `env:"COMMANDKIT_CLIENT_NAME" envDefault:"commandkit-client"`

	// SubjectPrefix must match the server's.
	SubjectPrefix string `env:"COMMANDKIT_SUBJECT_PREFIX" envDefault:"commands"`

	// Timeout bounds one call when the caller's context has no deadline.
	Timeout time.Duration `env:"COMMANDKIT_REQUEST_TIMEOUT" envDefault:"30s"`
}

// DefaultClientConfig returns the defaults documented on ClientConfig.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:           nats.DefaultURL,
		Name:          "commandkit-client",
		SubjectPrefix: "commands",
		Timeout:       30 * time.Second,
	}
}

// ClientConfigFromEnv reads the COMMANDKIT_* environment variables.
func ClientConfigFromEnv() (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("nats: parse client config: %w", err)
	}
	return cfg, nil
}

// Client runs remote commands by name. Safe for concurrent use.
type Client struct {
	cfg     ClientConfig
	logger  *slog.Logger
	tel     *observability.Telemetry
	creds   credentials.Provider
	nc      *nats.Conn
	ownConn bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the slog logger. Defaults to slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClientTelemetry propagates the caller's trace context on requests.
func WithClientTelemetry(tel *observability.Telemetry) ClientOption {
	return func(c *Client) { c.tel = tel }
}

// WithClientCredentials authenticates the NATS connection with credentials
// from the provider.
func WithClientCredentials(p credentials.Provider) ClientOption {
	return func(c *Client) { c.creds = p }
}

// WithClientConn reuses an existing NATS connection instead of dialing. The
// caller keeps ownership; Close will not close it.
func WithClientConn(nc *nats.Conn) ClientOption {
	return func(c *Client) { c.nc = nc }
}

// NewClient connects a command client.
func NewClient(ctx context.Context, cfg ClientConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.nc == nil {
		nc, err := dial(ctx, cfg.URL, cfg.Name, c.creds, c.logger)
		if err != nil {
			return nil, err
		}
		c.nc = nc
		c.ownConn = true
	}
	return c, nil
}

// Close releases the connection when the client dialed it.
func (c *Client) Close() {
	if c.nc != nil && c.ownConn {
		c.nc.Close()
	}
}

// Call runs the named remote command over raw attributes. The outcome
// carries the result still JSON-encoded; CallAs decodes into a typed value.
// A missing remote command reports command.ErrCommandNotFound. Remote faults
// and transport problems come back as errors.
func (c *Client) Call(ctx context.Context, name string, attrs command.Attributes) (*command.Outcome[json.RawMessage], error) {
	msg, err := c.request(ctx, c.cfg.SubjectPrefix+"."+name, attrs)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return nil, fmt.Errorf("%w: %s", command.ErrCommandNotFound, name)
		}
		return nil, fmt.Errorf("nats: call %s: %w", name, err)
	}
	if err := remoteFault(msg, name); err != nil {
		return nil, err
	}

	var envelope Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return nil, fmt.Errorf("nats: decode %s envelope: %w", name, err)
	}
	return envelope.outcome(), nil
}

// CallAs runs the named remote command and decodes a successful result into
// T.
func CallAs[T any](ctx context.Context, c *Client, name string, attrs command.Attributes) (*command.Outcome[T], error) {
	raw, err := c.Call(ctx, name, attrs)
	if err != nil {
		return nil, err
	}
	if raw.IsFailure() {
		return command.Failure[T](raw.Errors()...), nil
	}
	var out T
	if result := raw.Result(); len(result) > 0 {
		if err := json.Unmarshal(result, &out); err != nil {
			return nil, fmt.Errorf("nats: decode %s result: %w", name, err)
		}
	}
	return command.Success(out), nil
}

// Manifests fetches the manifest of every command the remote service
// exposes.
func (c *Client) Manifests(ctx context.Context) ([]command.Manifest, error) {
	msg, err := c.request(ctx, c.cfg.SubjectPrefix+"."+ManifestEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("nats: fetch manifests: %w", err)
	}
	if err := remoteFault(msg, ManifestEndpoint); err != nil {
		return nil, err
	}
	var manifests []command.Manifest
	if err := json.Unmarshal(msg.Data, &manifests); err != nil {
		return nil, fmt.Errorf("nats: decode manifests: %w", err)
	}
	return manifests, nil
}

func (c *Client) request(ctx context.Context, subject string, attrs command.Attributes) (*nats.Msg, error) {
	if _, ok := ctx.Deadline(); !ok && c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	msg := nats.NewMsg(subject)
	if attrs != nil {
		data, err := json.Marshal(attrs)
		if err != nil {
			return nil, fmt.Errorf("encode attributes: %w", err)
		}
		msg.Data = data
	}

	if id, ok := command.CorrelationIDFromContext(ctx); ok {
		msg.Header.Set(HeaderCorrelationID, id)
	}
	if id, ok := command.PrincipalIDFromContext(ctx); ok {
		msg.Header.Set(HeaderPrincipalID, id)
	}
	if c.tel != nil {
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	}

	return c.nc.RequestMsgWithContext(ctx, msg)
}

// remoteFault surfaces a micro error response as a client-side error.
func remoteFault(msg *nats.Msg, name string) error {
	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}
	description := msg.Header.Get(micro.ErrorHeader)
	if code == "404" {
		return fmt.Errorf("%w: %s", command.ErrCommandNotFound, name)
	}
	return fmt.Errorf("nats: remote fault running %s (code %s): %s", name, code, description)
}
