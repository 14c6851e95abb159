// Package password hashes, compares and strength-checks passwords for
// commands that handle credentials.
package password

import (
	"errors"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinCost     = bcrypt.MinCost
	MaxCost     = bcrypt.MaxCost
	DefaultCost = 12

	// MaxLength bounds inputs before hashing. bcrypt ignores bytes past 72
	// anyway; rejecting earlier avoids silently truncated credentials.
	MaxLength = 72

	// MinEntropyBits is the strength floor applied by ValidateStrength.
	MinEntropyBits = 60
)

// HashOption customizes hashing.
type HashOption func(*hashConfig)

type hashConfig struct {
	cost int
}

// WithCost sets the bcrypt cost factor. Out-of-range values keep the default.
func WithCost(cost int) HashOption {
	return func(c *hashConfig) {
		if cost >= MinCost && cost <= MaxCost {
			c.cost = cost
		}
	}
}

// Hash returns the bcrypt hash of password.
func Hash(password string, opts ...HashOption) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > MaxLength {
		return "", errors.New("password too long")
	}

	cfg := &hashConfig{cost: DefaultCost}
	for _, opt := range opts {
		opt(cfg)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cfg.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare checks a plaintext password against its stored hash. The underlying
// comparison is constant-time.
func Compare(hashedPassword, password string) error {
	if len(hashedPassword) == 0 {
		return errors.New("hashed password cannot be empty")
	}
	if len(password) == 0 {
		return errors.New("password cannot be empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidateStrength rejects passwords below the entropy floor.
func ValidateStrength(password string) error {
	return passwordvalidator.Validate(password, MinEntropyBits)
}
