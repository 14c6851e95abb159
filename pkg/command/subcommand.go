package command

import "context"

// faultError shields a framework fault from the execution_error conversion
// applied to errors returned by execute bodies. Only RunSubcommand produces
// it; drive unwraps it before handing the fault to the caller.
type faultError struct{ err error }

func (e *faultError) Error() string { return e.err.Error() }
func (e *faultError) Unwrap() error { return e.err }

// RunSubcommand runs child to completion inside parent's execute body. The
// child gets its own run and its own transaction. On success the child's
// result is returned. On failure every child error is copied into the
// parent's collection with the child command name prepended to its runtime
// path, the parent is halted, and ErrHalted comes back so the caller can
// return it directly:
//
//	sub, err := command.RunSubcommand(ctx, r, multiply, MultiplyInputs{...})
//	if err != nil {
//		return 0, err
//	}
//
// A child framework fault propagates to the parent's caller unchanged.
func RunSubcommand[CI, CO, PI any](ctx context.Context, parent *Run[PI], child *Definition[CI, CO], inputs CI) (CO, error) {
	outcome, err := child.RunInputs(ctx, inputs)
	return absorb(parent, child.Name(), outcome, err)
}

// RunSubcommandAttributes is RunSubcommand over raw attributes, for callers
// that assemble child inputs dynamically.
func RunSubcommandAttributes[CI, CO, PI any](ctx context.Context, parent *Run[PI], child *Definition[CI, CO], attrs Attributes) (CO, error) {
	outcome, err := child.Run(ctx, attrs)
	return absorb(parent, child.Name(), outcome, err)
}

// absorb folds a child outcome into the parent run.
func absorb[CO, PI any](parent *Run[PI], childName string, outcome *Outcome[CO], err error) (CO, error) {
	var zero CO
	if err != nil {
		return zero, &faultError{err: err}
	}
	if outcome.IsFailure() {
		for _, e := range outcome.Errors() {
			merged := e.clone()
			merged.RuntimePath = append([]string{childName}, merged.RuntimePath...)
			parent.errs.Add(merged)
		}
		parent.errs.Halt()
		return zero, ErrHalted
	}
	return outcome.Result(), nil
}
