package nats

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// EmbeddedServer runs an in-process NATS server. Tests and single-binary
// deployments use it instead of an external broker.
type EmbeddedServer struct {
	server       *server.Server
	url          string
	shutdownOnce sync.Once
}

// EmbeddedOption configures the embedded server.
type EmbeddedOption func(*server.Options)

// WithHost sets the listen host. Defaults to 127.0.0.1.
func WithHost(host string) EmbeddedOption {
	return func(o *server.Options) { o.Host = host }
}

// WithPort sets the listen port. Defaults to a random free port.
func WithPort(port int) EmbeddedOption {
	return func(o *server.Options) { o.Port = port }
}

// WithServerName names the server in monitoring output.
func WithServerName(name string) EmbeddedOption {
	return func(o *server.Options) { o.ServerName = name }
}

// WithJetStream toggles JetStream. Defaults to off; command dispatch only
// needs core request/reply.
func WithJetStream(enabled bool) EmbeddedOption {
	return func(o *server.Options) { o.JetStream = enabled }
}

// WithStoreDir sets the JetStream storage directory.
func WithStoreDir(dir string) EmbeddedOption {
	return func(o *server.Options) { o.StoreDir = dir }
}

// StartEmbeddedServer starts an in-process NATS server and waits until it
// accepts connections.
func StartEmbeddedServer(opts ...EmbeddedOption) (*EmbeddedServer, error) {
	options := &server.Options{
		Host: "127.0.0.1",
		Port: -1, // random free port
	}
	for _, opt := range opts {
		opt(options)
	}

	s, err := server.NewServer(options)
	if err != nil {
		return nil, fmt.Errorf("nats: create embedded server: %w", err)
	}

	go s.Start()

	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		return nil, fmt.Errorf("nats: embedded server not ready")
	}

	return &EmbeddedServer{server: s, url: s.ClientURL()}, nil
}

// URL returns the client connection URL.
func (e *EmbeddedServer) URL() string {
	return e.url
}

// Shutdown stops the server and waits for it to exit, at most five seconds.
// Safe to call more than once.
func (e *EmbeddedServer) Shutdown() {
	e.shutdownOnce.Do(func() {
		if e.server == nil {
			return
		}
		e.server.Shutdown()

		done := make(chan struct{})
		go func() {
			e.server.WaitForShutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	})
}

// Connect opens a client connection to the embedded server.
func (e *EmbeddedServer) Connect() (*nats.Conn, error) {
	return nats.Connect(e.url)
}
