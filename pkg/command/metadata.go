package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/plaenen/commandkit/pkg/idgen"
)

// TimeFunc returns the current time. Tests may replace it.
var TimeFunc = time.Now

// Metadata describes one run for logging, tracing and remote transports.
type Metadata struct {
	// RunID uniquely identifies this run (ULID, sortable).
	RunID string `json:"run_id"`

	// CorrelationID groups runs belonging to one logical operation. Taken
	// from the context when present, freshly generated otherwise.
	CorrelationID string `json:"correlation_id"`

	// PrincipalID is the identity the run acts for, when the context
	// carries one.
	PrincipalID string `json:"principal_id,omitempty"`

	// StartedAt is when the run entered the state machine.
	StartedAt time.Time `json:"started_at"`
}

// newMetadata stamps a fresh run.
func newMetadata(ctx context.Context) Metadata {
	md := Metadata{
		RunID:     idgen.MustNewRunID(),
		StartedAt: TimeFunc(),
	}
	if id, ok := CorrelationIDFromContext(ctx); ok {
		md.CorrelationID = id
	} else {
		md.CorrelationID = uuid.NewString()
	}
	if id, ok := PrincipalIDFromContext(ctx); ok {
		md.PrincipalID = id
	}
	return md
}
