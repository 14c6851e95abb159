package credentials

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Static provides fixed credentials. Development only; production secrets
// belong in a secret backend.
type Static struct {
	creds *Credentials
}

// NewStaticToken creates a provider with a fixed token. A ttl of zero means
// the token never expires.
func NewStaticToken(token string, ttl time.Duration) *Static {
	var expiresAt *time.Time
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		expiresAt = &exp
	}
	return &Static{
		creds: &Credentials{
			Type:      TypeToken,
			Token:     token,
			ExpiresAt: expiresAt,
			Metadata:  map[string]string{"provider": "static"},
		},
	}
}

// NewStaticUserPassword creates a provider with a fixed username/password
// pair.
func NewStaticUserPassword(user, password string) *Static {
	return &Static{
		creds: &Credentials{
			Type:     TypeUserPassword,
			User:     user,
			Password: password,
			Metadata: map[string]string{"provider": "static"},
		},
	}
}

// GetCredentials returns the fixed credentials.
func (p *Static) GetCredentials(ctx context.Context) (*Credentials, error) {
	if p.creds.IsExpired() {
		return nil, ErrCredentialsExpired
	}
	return p.creds, nil
}

// Rotate is not supported for static credentials.
func (p *Static) Rotate(ctx context.Context) error {
	return fmt.Errorf("rotation not supported for static provider")
}

// Type returns the credential type.
func (p *Static) Type() Type {
	return p.creds.Type
}

// Close is a no-op.
func (p *Static) Close() error {
	return nil
}

// Env reads credentials from environment variables on every call, so values
// injected at runtime are picked up without a restart.
type Env struct {
	tokenVar    string
	userVar     string
	passwordVar string
	credType    Type
	ttl         time.Duration
}

// NewEnvToken creates a provider reading a bearer token from tokenVar.
func NewEnvToken(tokenVar string, ttl time.Duration) *Env {
	return &Env{
		tokenVar: tokenVar,
		credType: TypeToken,
		ttl:      ttl,
	}
}

// NewEnvUserPassword creates a provider reading a username/password pair
// from the given variables.
func NewEnvUserPassword(userVar, passwordVar string) *Env {
	return &Env{
		userVar:     userVar,
		passwordVar: passwordVar,
		credType:    TypeUserPassword,
	}
}

// GetCredentials reads the configured environment variables.
func (p *Env) GetCredentials(ctx context.Context) (*Credentials, error) {
	switch p.credType {
	case TypeToken:
		token := os.Getenv(p.tokenVar)
		if token == "" {
			return nil, fmt.Errorf("environment variable %s not set", p.tokenVar)
		}
		var expiresAt *time.Time
		if p.ttl > 0 {
			exp := time.Now().Add(p.ttl)
			expiresAt = &exp
		}
		return &Credentials{
			Type:      TypeToken,
			Token:     token,
			ExpiresAt: expiresAt,
			Metadata:  map[string]string{"provider": "environment", "env_var": p.tokenVar},
		}, nil

	case TypeUserPassword:
		user := os.Getenv(p.userVar)
		password := os.Getenv(p.passwordVar)
		if user == "" || password == "" {
			return nil, fmt.Errorf("environment variables %s and %s must be set", p.userVar, p.passwordVar)
		}
		return &Credentials{
			Type:     TypeUserPassword,
			User:     user,
			Password: password,
			Metadata: map[string]string{"provider": "environment"},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported credential type: %s", p.credType)
	}
}

// Rotate is a no-op: the next GetCredentials re-reads the environment.
func (p *Env) Rotate(ctx context.Context) error {
	return nil
}

// Type returns the credential type.
func (p *Env) Type() Type {
	return p.credType
}

// Close is a no-op.
func (p *Env) Close() error {
	return nil
}

// Chain tries providers in order until one succeeds. Typical use: secret
// backend first, environment fallback for local development.
type Chain struct {
	providers []Provider
}

// NewChain creates a provider that consults the given providers in order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// GetCredentials returns the first successful result.
func (p *Chain) GetCredentials(ctx context.Context) (*Credentials, error) {
	var lastErr error
	for i, provider := range p.providers {
		creds, err := provider.GetCredentials(ctx)
		if err == nil {
			return creds, nil
		}
		lastErr = fmt.Errorf("provider %d failed: %w", i, err)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all providers failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no providers configured")
}

// Rotate rotates the first provider that accepts it.
func (p *Chain) Rotate(ctx context.Context) error {
	var lastErr error
	for i, provider := range p.providers {
		if err := provider.Rotate(ctx); err == nil {
			return nil
		} else {
			lastErr = fmt.Errorf("provider %d rotation failed: %w", i, err)
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("no providers configured")
}

// Type returns the type of the first provider.
func (p *Chain) Type() Type {
	if len(p.providers) > 0 {
		return p.providers[0].Type()
	}
	return ""
}

// Close closes every provider in the chain.
func (p *Chain) Close() error {
	var errs []error
	for _, provider := range p.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close %d provider(s): %v", len(errs), errs)
	}
	return nil
}
