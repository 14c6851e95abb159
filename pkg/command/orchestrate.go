package command

import (
	"context"
	"errors"
	"fmt"
)

// SymbolExecutionError marks runtime errors converted from an execute body
// that returned an unexpected error or panicked.
const SymbolExecutionError = "execution_error"

// Run drives the command over raw attributes: cast and validate inputs, load
// and validate records, open a transaction, execute, commit. The outcome
// carries every expected failure; the returned error is reserved for
// framework-level faults (callback bugs, collaborator failures, context
// cancellation) and is nil otherwise.
func (d *Definition[I, O]) Run(ctx context.Context, attrs Attributes) (*Outcome[O], error) {
	r := newRun[I](ctx, d.name, attrs)
	return d.drive(ctx, r, func(context.Context) error {
		inputs, ferrs := d.schema.Cast(attrs)
		for _, fe := range ferrs {
			r.errs.Add(errorFromField(fe))
		}
		if !r.errs.IsEmpty() {
			return ErrHalted
		}
		r.Inputs = inputs
		return nil
	})
}

// RunInputs drives the command over already-typed inputs. Structural casting
// is skipped; declared tag rules still apply.
func (d *Definition[I, O]) RunInputs(ctx context.Context, inputs I) (*Outcome[O], error) {
	r := newRun[I](ctx, d.name, nil)
	return d.drive(ctx, r, func(context.Context) error {
		for _, fe := range d.schema.Validate(inputs) {
			r.errs.Add(errorFromField(fe))
		}
		if !r.errs.IsEmpty() {
			return ErrHalted
		}
		r.Inputs = inputs
		return nil
	})
}

// drive walks the happy path until a terminal state, diverting to the fail
// path on halt. cast is the core action of the first transition.
func (d *Definition[I, O]) drive(ctx context.Context, r *Run[I], cast func(context.Context) error) (*Outcome[O], error) {
	var result O

	for !r.state.Terminal() {
		if err := ctx.Err(); err != nil {
			d.release(ctx, r)
			return nil, err
		}

		t, ok := NextTransition(r.state)
		if !ok {
			d.release(ctx, r)
			return nil, fmt.Errorf("command %s: no transition leaves state %s", d.name, r.state)
		}

		if err := d.fire(ctx, r, t, d.coreAction(t.Name, r, &result, cast), false); err != nil {
			if errors.Is(err, ErrHalted) {
				return d.fail(ctx, r)
			}
			d.release(ctx, r)
			return nil, err
		}

		// Errors recorded up to and including open_transaction always halt
		// at the phase boundary: user logic never sees invalid inputs or
		// records. Past that point non-halting errors only accumulate.
		if !r.errs.IsEmpty() && t.Name != TransitionExecute &&
			t.Name != TransitionCommitTransaction && t.Name != TransitionSucceed {
			return d.fail(ctx, r)
		}
	}

	if !r.errs.IsEmpty() {
		return Failure[O](r.errs.Errors()...), nil
	}
	return Success(result), nil
}

// fire runs one transition: before hooks, the core action wrapped by around
// hooks, after hooks, then the state advance. With failing set (the fail
// transition) halt signals are ignored; faults always propagate.
func (d *Definition[I, O]) fire(ctx context.Context, r *Run[I], t Transition, core func(context.Context) error, failing bool) error {
	r.transition = t

	for _, reg := range d.callbacks.matching(PhaseBefore, t) {
		err := reg.hook(ctx, r)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrHalted) {
			r.errs.Halt()
			break
		}
		return err
	}
	if !failing && r.errs.Halted() {
		return ErrHalted
	}

	action := core
	arounds := d.callbacks.matching(PhaseAround, t)
	for i := len(arounds) - 1; i >= 0; i-- {
		around := arounds[i].around
		next := action
		action = func(ctx context.Context) error {
			return around(ctx, r, next)
		}
	}
	if err := action(ctx); err != nil {
		if !errors.Is(err, ErrHalted) {
			return err
		}
		r.errs.Halt()
	}
	if !failing && r.errs.Halted() {
		return ErrHalted
	}

	// The transition has happened: after hooks observe the new state.
	r.state = t.To

	for _, reg := range d.callbacks.matching(PhaseAfter, t) {
		err := reg.hook(ctx, r)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrHalted) {
			r.errs.Halt()
			break
		}
		return err
	}
	if !failing && r.errs.Halted() {
		return ErrHalted
	}
	return nil
}

// coreAction returns the work a transition performs between its before and
// after hooks.
func (d *Definition[I, O]) coreAction(name string, r *Run[I], result *O, cast func(context.Context) error) func(context.Context) error {
	switch name {
	case TransitionCastAndValidateInputs:
		return cast

	case TransitionLoadRecords:
		if d.loadRecords == nil {
			return noop
		}
		return func(ctx context.Context) error { return d.loadRecords(ctx, r) }

	case TransitionValidateRecords:
		if d.validateRecords == nil {
			return noop
		}
		return func(ctx context.Context) error { return d.validateRecords(ctx, r) }

	case TransitionOpenTransaction:
		return func(ctx context.Context) error {
			if d.txm == nil {
				return nil
			}
			tx, err := d.txm.Begin(ctx)
			if err != nil {
				return fmt.Errorf("command %s: open transaction: %w", d.name, err)
			}
			r.tx = tx
			return nil
		}

	case TransitionExecute:
		return func(ctx context.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = r.AddRuntimeError(SymbolExecutionError,
						fmt.Sprintf("panic in execute: %v", rec),
						WithHalt(), WithContext("panic", true))
				}
			}()
			out, execErr := d.execute(ctx, r)
			if execErr != nil {
				if errors.Is(execErr, ErrHalted) {
					return ErrHalted
				}
				var fault *faultError
				if errors.As(execErr, &fault) {
					return fault.err
				}
				return r.AddRuntimeError(SymbolExecutionError, execErr.Error(), WithHalt())
			}
			*result = out
			return nil
		}

	case TransitionCommitTransaction:
		return func(ctx context.Context) error {
			if r.tx == nil {
				return nil
			}
			tx := r.tx
			r.tx = nil // released either way, a failed commit is not retried
			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("command %s: commit transaction: %w", d.name, err)
			}
			return nil
		}

	default: // succeed
		return noop
	}
}

func noop(context.Context) error { return nil }

// fail fires the fail transition from the current state and produces the
// Failure outcome. Its core action rolls back an open transaction; rollback
// errors are discarded, the run already failed.
func (d *Definition[I, O]) fail(ctx context.Context, r *Run[I]) (*Outcome[O], error) {
	t := FailTransition(r.state)
	rollback := func(ctx context.Context) error {
		d.release(ctx, r)
		return nil
	}
	if err := d.fire(ctx, r, t, rollback, true); err != nil {
		d.release(ctx, r)
		return nil, err
	}
	return Failure[O](r.errs.Errors()...), nil
}

// release rolls back an open transaction, once.
func (d *Definition[I, O]) release(ctx context.Context, r *Run[I]) {
	if r.tx == nil {
		return
	}
	tx := r.tx
	r.tx = nil
	_ = tx.Rollback(ctx)
}
