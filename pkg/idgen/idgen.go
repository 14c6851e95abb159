// Package idgen generates identifiers for command runs.
package idgen

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRunID returns a lexicographically sortable run identifier (ULID).
// Sortability keeps run logs and stored outcomes naturally ordered by time.
func NewRunID() (string, error) {
	now := time.Now()
	entropy := rand.New(rand.NewSource(now.UnixNano()))
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustNewRunID returns a new run identifier or panics.
func MustNewRunID() string {
	id, err := NewRunID()
	if err != nil {
		panic(err)
	}
	return id
}
