package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/plaenen/commandkit/pkg/credentials"
)

// dial connects to NATS with reconnect logging and optional credentials.
func dial(ctx context.Context, url, name string, provider credentials.Provider, logger *slog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}

	authOpt, err := authOption(ctx, provider)
	if err != nil {
		return nil, err
	}
	if authOpt != nil {
		opts = append(opts, authOpt)
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats: connect to %s: %w", url, err)
	}
	return nc, nil
}

// authOption maps provider credentials onto a NATS connect option.
func authOption(ctx context.Context, provider credentials.Provider) (nats.Option, error) {
	if provider == nil {
		return nil, nil
	}
	creds, err := provider.GetCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("nats: get credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("nats: %w", err)
	}
	switch creds.Type {
	case credentials.TypeToken:
		return nats.Token(creds.Token), nil
	case credentials.TypeUserPassword:
		return nats.UserInfo(creds.User, creds.Password), nil
	default:
		return nil, fmt.Errorf("nats: unsupported credential type %q", creds.Type)
	}
}
