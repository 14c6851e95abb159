package command

import "context"

// Attributes is the raw keyword-style input of a run.
type Attributes = map[string]any

// Run is the per-invocation state of a command: current lifecycle state, the
// error collection, loaded records, scratch values and the open transaction.
// Each invocation gets a fresh Run; it is owned by that invocation and never
// reused, so no synchronization is needed on it.
type Run[I any] struct {
	// Inputs holds the cast and validated inputs once the
	// cast_and_validate_inputs phase has completed.
	Inputs I

	name       string
	state      State
	transition Transition
	errs       *ErrorCollection
	records    map[string]any
	values     map[string]any
	tx         Tx
	meta       Metadata
	raw        Attributes
}

func newRun[I any](ctx context.Context, name string, raw Attributes) *Run[I] {
	return &Run[I]{
		name:  name,
		state: StateInitialized,
		errs:  NewErrorCollection(),
		meta:  newMetadata(ctx),
		raw:   raw,
	}
}

// CommandName returns the name of the definition being run.
func (r *Run[I]) CommandName() string {
	return r.name
}

// State returns the current lifecycle state.
func (r *Run[I]) State() State {
	return r.state
}

// Transition returns the transition currently being fired. Useful inside
// wildcard callbacks.
func (r *Run[I]) Transition() Transition {
	return r.transition
}

// Metadata returns the run's identity metadata.
func (r *Run[I]) Metadata() Metadata {
	return r.meta
}

// RawInputs returns the attribute map the run was started with, nil when the
// run was started from typed inputs.
func (r *Run[I]) RawInputs() Attributes {
	return r.raw
}

// AddError records a structured error. It returns ErrHalted when the error
// halts the run, nil otherwise; halting callers propagate the returned error.
func (r *Run[I]) AddError(e *Error) error {
	if e == nil {
		return nil
	}
	r.errs.Add(e)
	if e.Halt {
		return ErrHalted
	}
	return nil
}

// AddInputError records a data error about the attribute at path.
func (r *Run[I]) AddInputError(path []string, symbol, message string, opts ...ErrorOption) error {
	return r.AddError(NewInputError(path, symbol, message, opts...))
}

// AddRuntimeError records a runtime error.
func (r *Run[I]) AddRuntimeError(symbol, message string, opts ...ErrorOption) error {
	return r.AddError(NewRuntimeError(symbol, message, opts...))
}

// Errors returns the errors recorded so far, in order.
func (r *Run[I]) Errors() []*Error {
	return r.errs.Errors()
}

// HasErrors reports whether any error was recorded.
func (r *Run[I]) HasErrors() bool {
	return !r.errs.IsEmpty()
}

// Halted reports whether a halting error was recorded.
func (r *Run[I]) Halted() bool {
	return r.errs.Halted()
}

// SetRecord stores a record loaded for this run under name.
func (r *Run[I]) SetRecord(name string, record any) {
	if r.records == nil {
		r.records = make(map[string]any)
	}
	r.records[name] = record
}

// Record returns the record stored under name.
func (r *Run[I]) Record(name string) (any, bool) {
	rec, ok := r.records[name]
	return rec, ok
}

// Records returns all loaded records.
func (r *Run[I]) Records() map[string]any {
	out := make(map[string]any, len(r.records))
	for k, v := range r.records {
		out[k] = v
	}
	return out
}

// Set stores a scratch value on the run, visible to later callbacks and the
// execute body.
func (r *Run[I]) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.values[key] = value
}

// Value returns a scratch value stored by an earlier callback or phase.
func (r *Run[I]) Value(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Transaction returns the open transaction, nil before open_transaction (or
// when the definition has no transaction manager).
func (r *Run[I]) Transaction() Tx {
	return r.tx
}
