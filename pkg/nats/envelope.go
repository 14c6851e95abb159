// Package nats exposes a command registry over NATS request/reply. The
// server publishes one micro service endpoint per registered command plus a
// manifest endpoint for discovery; the client dispatches attribute maps and
// decodes outcomes. Payloads are plain JSON envelopes, so any NATS client can
// talk to a commandkit service without this package.
package nats

import (
	"github.com/goccy/go-json"

	"github.com/plaenen/commandkit/pkg/command"
)

// Headers carried on command requests. The server copies them into the run
// context so dispatched commands see the caller's identity and correlation.
const (
	HeaderCorrelationID = "Commandkit-Correlation-Id"
	HeaderPrincipalID   = "Commandkit-Principal-Id"
)

// ManifestEndpoint is the endpoint name suffix for command discovery. The
// full subject is "<prefix>.manifest".
const ManifestEndpoint = "manifest"

// Envelope is the reply payload for one dispatched command. Exactly one of
// Result and Errors is populated, mirroring the outcome it carries.
type Envelope struct {
	Success bool             `json:"success"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Errors  []*command.Error `json:"errors,omitempty"`
}

// envelopeFor flattens a type-erased outcome onto the wire shape.
func envelopeFor(outcome *command.Outcome[any]) (*Envelope, error) {
	if outcome.IsFailure() {
		return &Envelope{Success: false, Errors: outcome.Errors()}, nil
	}
	result, err := json.Marshal(outcome.Result())
	if err != nil {
		return nil, err
	}
	return &Envelope{Success: true, Result: result}, nil
}

// outcome converts the envelope back into an outcome over the raw result
// bytes. Typed decoding happens in CallAs.
func (e *Envelope) outcome() *command.Outcome[json.RawMessage] {
	if !e.Success {
		return command.Failure[json.RawMessage](e.Errors...)
	}
	return command.Success(e.Result)
}
