package command

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/plaenen/commandkit/pkg/schema"
)

// ExecuteFunc is the user-supplied body of a command. Its return value
// becomes the success result. Returning ErrHalted (propagated from an
// Add*Error call or a subcommand) halts the run with the errors already
// recorded; any other error or panic is converted to a halting runtime error
// with symbol "execution_error".
type ExecuteFunc[I, O any] func(ctx context.Context, run *Run[I]) (O, error)

// PhaseFunc is the body of an optional lifecycle phase (record loading,
// record validation). Problems are surfaced as data or runtime errors on the
// run; a non-nil return other than ErrHalted is treated as a fault.
type PhaseFunc[I any] func(ctx context.Context, run *Run[I]) error

// Definition is a command: a name, an input schema reflected from I, the
// execute body, optional lifecycle collaborators and the callback table.
// Configure it fully during initialization; afterwards it is immutable and
// safe for concurrent runs.
type Definition[I, O any] struct {
	name            string
	description     string
	execute         ExecuteFunc[I, O]
	loadRecords     PhaseFunc[I]
	validateRecords PhaseFunc[I]
	txm             TransactionManager
	schema          *schema.Schema[I]
	callbacks       callbackRegistry[I]
}

// NewDefinition creates a command definition. I must be a struct; its fields
// form the input schema. Panics on an unusable inputs type or a missing
// execute body, both authoring errors caught at definition time.
func NewDefinition[I, O any](name string, execute ExecuteFunc[I, O]) *Definition[I, O] {
	if name == "" {
		panic("command: definition requires a name")
	}
	if execute == nil {
		panic(fmt.Sprintf("command: definition %s requires an execute func", name))
	}
	return &Definition[I, O]{
		name:    name,
		execute: execute,
		schema:  schema.MustFor[I](),
	}
}

// Describe sets the human-readable description published in the manifest.
func (d *Definition[I, O]) Describe(description string) *Definition[I, O] {
	d.description = description
	return d
}

// UseRecordLoader installs the load_records phase body.
func (d *Definition[I, O]) UseRecordLoader(fn PhaseFunc[I]) *Definition[I, O] {
	d.loadRecords = fn
	return d
}

// UseRecordValidator installs the validate_records phase body.
func (d *Definition[I, O]) UseRecordValidator(fn PhaseFunc[I]) *Definition[I, O] {
	d.validateRecords = fn
	return d
}

// UseTransactionManager installs the transaction collaborator. Without one
// the open/commit phases are no-ops (their callbacks still fire).
func (d *Definition[I, O]) UseTransactionManager(tm TransactionManager) *Definition[I, O] {
	d.txm = tm
	return d
}

// Name returns the command's full name.
func (d *Definition[I, O]) Name() string {
	return d.name
}

// Description returns the command's description.
func (d *Definition[I, O]) Description() string {
	return d.description
}

// Schema returns the reflected input schema.
func (d *Definition[I, O]) Schema() *schema.Schema[I] {
	return d.schema
}

// InputSchemaJSON renders the input schema as a JSON Schema document.
func (d *Definition[I, O]) InputSchemaJSON() ([]byte, error) {
	return d.schema.JSONSchema()
}

// Manifest describes a command to registries, transports and generators.
type Manifest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	InputSchema     json.RawMessage `json:"input_schema,omitempty"`
	SensitiveFields []string        `json:"sensitive_fields,omitempty"`
}

// Manifest returns the definition's manifest.
func (d *Definition[I, O]) Manifest() (Manifest, error) {
	schemaJSON, err := d.schema.JSONSchema()
	if err != nil {
		return Manifest{}, fmt.Errorf("command: manifest for %s: %w", d.name, err)
	}
	return Manifest{
		Name:            d.name,
		Description:     d.description,
		InputSchema:     schemaJSON,
		SensitiveFields: d.schema.SensitiveFields(),
	}, nil
}

// HasCallbacks reports whether any callback is registered.
func (d *Definition[I, O]) HasCallbacks() bool {
	return d.callbacks.hasAny()
}

// CallbacksFor returns the before or after callbacks matching t, in
// invocation order (ascending priority, registration order on ties).
func (d *Definition[I, O]) CallbacksFor(phase Phase, t Transition) []Hook[I] {
	regs := d.callbacks.matching(phase, t)
	out := make([]Hook[I], 0, len(regs))
	for _, r := range regs {
		if r.hook != nil {
			out = append(out, r.hook)
		}
	}
	return out
}

// AroundCallbacksFor returns the around callbacks matching t, outermost
// first.
func (d *Definition[I, O]) AroundCallbacksFor(t Transition) []AroundHook[I] {
	regs := d.callbacks.matching(PhaseAround, t)
	out := make([]AroundHook[I], 0, len(regs))
	for _, r := range regs {
		if r.around != nil {
			out = append(out, r.around)
		}
	}
	return out
}
