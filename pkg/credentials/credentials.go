// Package credentials manages the secrets commandkit transports authenticate
// with. Providers hand out credentials from static values, the environment,
// or an encrypted secret backend via the Go Cloud Development Kit, so the
// same connector code runs against AWS Secrets Manager, GCP Secret Manager,
// Azure Key Vault, HashiCorp Vault, or a local file.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/plaenen/commandkit/pkg/validators"
)

var (
	// ErrCredentialsExpired is returned when credentials have expired.
	ErrCredentialsExpired = errors.New("credentials expired")

	// ErrInvalidCredentials is returned when credentials are malformed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProviderClosed is returned when using a closed provider.
	ErrProviderClosed = errors.New("provider is closed")
)

// Type classifies a credential.
type Type string

const (
	// TypeToken is a simple bearer token.
	TypeToken Type = "token"

	// TypeUserPassword is username/password authentication.
	TypeUserPassword Type = "user_password"

	// TypeJWT is JWT-based authentication.
	TypeJWT Type = "jwt"
)

// Credentials is one set of transport credentials with expiry metadata.
type Credentials struct {
	// Type specifies the credential type.
	Type Type `json:"type"`

	// Token for token-based authentication.
	Token string `json:"token,omitempty"`

	// User for username/password authentication.
	User string `json:"user,omitempty"`

	// Password for username/password authentication.
	Password string `json:"password,omitempty"`

	// JWT for JWT authentication.
	JWT string `json:"jwt,omitempty"`

	// ExpiresAt is when the credentials stop being valid, if ever.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Metadata carries provider context, never secrets.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IsExpired reports whether the credentials are past their expiry.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// Validate ensures the credentials are well-formed for their type.
func (c *Credentials) Validate() error {
	switch c.Type {
	case TypeToken:
		if c.Token == "" {
			return fmt.Errorf("%w: token is required", ErrInvalidCredentials)
		}
	case TypeUserPassword:
		if c.User == "" || c.Password == "" {
			return fmt.Errorf("%w: user and password are required", ErrInvalidCredentials)
		}
	case TypeJWT:
		if c.JWT == "" {
			return fmt.Errorf("%w: jwt is required", ErrInvalidCredentials)
		}
	case "":
		return fmt.Errorf("%w: type is required", ErrInvalidCredentials)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCredentials, c.Type)
	}
	return nil
}

// MarshalJSON redacts secret material so credentials can cross log and debug
// boundaries without leaking.
func (c *Credentials) MarshalJSON() ([]byte, error) {
	type alias Credentials
	masked := &struct {
		Token    string `json:"token,omitempty"`
		Password string `json:"password,omitempty"`
		JWT      string `json:"jwt,omitempty"`
		*alias
	}{
		alias: (*alias)(c),
	}
	if c.Token != "" {
		masked.Token = validators.MaskString(c.Token)
	}
	if c.Password != "" {
		masked.Password = validators.MaskPassword(c.Password)
	}
	if c.JWT != "" {
		masked.JWT = validators.MaskString(c.JWT)
	}
	return json.Marshal(masked)
}

// Provider hands out credentials to transports.
type Provider interface {
	// GetCredentials retrieves the current credentials.
	GetCredentials(ctx context.Context) (*Credentials, error)

	// Rotate triggers credential rotation where the backend supports it.
	Rotate(ctx context.Context) error

	// Type returns the credential type this provider manages.
	Type() Type

	// Close releases any resources held by the provider.
	Close() error
}

// StoredSecret is the envelope persisted in the secret backend.
type StoredSecret struct {
	Credentials *Credentials      `json:"credentials"`
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Config tunes caching and refresh for backend-based providers.
type Config struct {
	// CacheTTL is how long fetched credentials stay valid in memory.
	CacheTTL time.Duration

	// AutoRefresh re-fetches credentials in the background.
	AutoRefresh bool

	// RefreshInterval is how often auto-refresh runs.
	RefreshInterval time.Duration
}

// DefaultConfig returns the provider defaults: five minute cache, refreshed
// at half the TTL.
func DefaultConfig() Config {
	return Config{
		CacheTTL:        5 * time.Minute,
		AutoRefresh:     true,
		RefreshInterval: 2*time.Minute + 30*time.Second,
	}
}
