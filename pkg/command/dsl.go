package command

// Registration DSL. The general forms take matcher options; the convenience
// wrappers bind one matcher field each. All registration must happen during
// initialization, before the definition's first run.

// BeforeTransition registers a hook that runs before the core action of every
// matching transition.
func (d *Definition[I, O]) BeforeTransition(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	d.callbacks.register(PhaseBefore, hook, nil, opts)
	return d
}

// AfterTransition registers a hook that runs after the core action of every
// matching transition completed.
func (d *Definition[I, O]) AfterTransition(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	d.callbacks.register(PhaseAfter, hook, nil, opts)
	return d
}

// AroundTransition registers a hook wrapping the core action of every
// matching transition. The hook must call next for the action to run.
func (d *Definition[I, O]) AroundTransition(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	d.callbacks.register(PhaseAround, nil, around, opts)
	return d
}

// Wildcard conveniences.

// BeforeAnyTransition registers hook for every transition.
func (d *Definition[I, O]) BeforeAnyTransition(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, opts...)
}

// AfterAnyTransition registers hook for every transition.
func (d *Definition[I, O]) AfterAnyTransition(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, opts...)
}

// AroundAnyTransition registers around for every transition.
func (d *Definition[I, O]) AroundAnyTransition(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, opts...)
}

// From/to-state conveniences.

// BeforeTransitionFrom registers hook for transitions leaving state.
func (d *Definition[I, O]) BeforeTransitionFrom(state State, hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchFrom(state))...)
}

// AfterTransitionFrom registers hook for transitions leaving state.
func (d *Definition[I, O]) AfterTransitionFrom(state State, hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchFrom(state))...)
}

// AroundTransitionFrom registers around for transitions leaving state.
func (d *Definition[I, O]) AroundTransitionFrom(state State, around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchFrom(state))...)
}

// BeforeTransitionTo registers hook for transitions entering state.
func (d *Definition[I, O]) BeforeTransitionTo(state State, hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTo(state))...)
}

// AfterTransitionTo registers hook for transitions entering state. Use
// StateFailed or StateSucceeded to observe terminal outcomes.
func (d *Definition[I, O]) AfterTransitionTo(state State, hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTo(state))...)
}

// AroundTransitionTo registers around for transitions entering state.
func (d *Definition[I, O]) AroundTransitionTo(state State, around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTo(state))...)
}

// Per-named-transition conveniences.

// BeforeCastAndValidateInputs registers hook before input casting.
func (d *Definition[I, O]) BeforeCastAndValidateInputs(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionCastAndValidateInputs))...)
}

// AfterCastAndValidateInputs registers hook after input casting succeeded.
func (d *Definition[I, O]) AfterCastAndValidateInputs(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionCastAndValidateInputs))...)
}

// AroundCastAndValidateInputs registers around wrapping input casting.
func (d *Definition[I, O]) AroundCastAndValidateInputs(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTransition(TransitionCastAndValidateInputs))...)
}

// BeforeLoadRecords registers hook before the record loader.
func (d *Definition[I, O]) BeforeLoadRecords(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionLoadRecords))...)
}

// AfterLoadRecords registers hook after the record loader succeeded.
func (d *Definition[I, O]) AfterLoadRecords(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionLoadRecords))...)
}

// AroundLoadRecords registers around wrapping the record loader.
func (d *Definition[I, O]) AroundLoadRecords(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTransition(TransitionLoadRecords))...)
}

// BeforeValidateRecords registers hook before the record validator.
func (d *Definition[I, O]) BeforeValidateRecords(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionValidateRecords))...)
}

// AfterValidateRecords registers hook after the record validator succeeded.
func (d *Definition[I, O]) AfterValidateRecords(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionValidateRecords))...)
}

// AroundValidateRecords registers around wrapping the record validator.
func (d *Definition[I, O]) AroundValidateRecords(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTransition(TransitionValidateRecords))...)
}

// BeforeOpenTransaction registers hook before the transaction opens.
func (d *Definition[I, O]) BeforeOpenTransaction(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionOpenTransaction))...)
}

// AfterOpenTransaction registers hook after the transaction opened.
func (d *Definition[I, O]) AfterOpenTransaction(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionOpenTransaction))...)
}

// AroundOpenTransaction registers around wrapping the transaction open.
func (d *Definition[I, O]) AroundOpenTransaction(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTransition(TransitionOpenTransaction))...)
}

// BeforeExecute registers hook before the execute body.
func (d *Definition[I, O]) BeforeExecute(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionExecute))...)
}

// AfterExecute registers hook after the execute body succeeded.
func (d *Definition[I, O]) AfterExecute(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionExecute))...)
}

// AroundExecute registers around wrapping the execute body.
func (d *Definition[I, O]) AroundExecute(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTransition(TransitionExecute))...)
}

// BeforeCommitTransaction registers hook before the transaction commits.
func (d *Definition[I, O]) BeforeCommitTransaction(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionCommitTransaction))...)
}

// AfterCommitTransaction registers hook after the transaction committed.
func (d *Definition[I, O]) AfterCommitTransaction(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionCommitTransaction))...)
}

// AroundCommitTransaction registers around wrapping the transaction commit.
func (d *Definition[I, O]) AroundCommitTransaction(around AroundHook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AroundTransition(around, append(opts, MatchTransition(TransitionCommitTransaction))...)
}

// BeforeSucceed registers hook before the run is declared successful.
func (d *Definition[I, O]) BeforeSucceed(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionSucceed))...)
}

// AfterSucceed registers hook after the run reached the succeeded state.
func (d *Definition[I, O]) AfterSucceed(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionSucceed))...)
}

// BeforeFail registers hook before the fail transition completes.
func (d *Definition[I, O]) BeforeFail(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.BeforeTransition(hook, append(opts, MatchTransition(TransitionFail))...)
}

// AfterFail registers hook after the run reached the failed state.
func (d *Definition[I, O]) AfterFail(hook Hook[I], opts ...CallbackOption) *Definition[I, O] {
	return d.AfterTransition(hook, append(opts, MatchTransition(TransitionFail))...)
}
