package command

// State identifies a position in the command lifecycle.
type State string

const (
	// StateInitialized is the state every run starts in.
	StateInitialized State = "initialized"

	// StateCastingAndValidatingInputs is entered while raw attributes are
	// cast and validated against the input schema.
	StateCastingAndValidatingInputs State = "casting_and_validating_inputs"

	// StateLoadingRecords is entered while the record loader runs.
	StateLoadingRecords State = "loading_records"

	// StateValidatingRecords is entered while loaded records are validated.
	StateValidatingRecords State = "validating_records"

	// StateOpeningTransaction is entered while the transaction manager opens
	// a transaction.
	StateOpeningTransaction State = "opening_transaction"

	// StateExecuting is entered while the user-supplied execute body runs.
	StateExecuting State = "executing"

	// StateCommittingTransaction is entered while an open transaction commits.
	StateCommittingTransaction State = "committing_transaction"

	// StateSucceeded is the terminal state of a run that completed every phase.
	StateSucceeded State = "succeeded"

	// StateFailed is the absorbing terminal state, reachable from every
	// non-terminal state.
	StateFailed State = "failed"
)

// Transition names. Each names the single happy-path edge leaving a
// non-terminal state, except TransitionFail which is usable from any of them.
const (
	TransitionCastAndValidateInputs = "cast_and_validate_inputs"
	TransitionLoadRecords           = "load_records"
	TransitionValidateRecords       = "validate_records"
	TransitionOpenTransaction       = "open_transaction"
	TransitionExecute               = "execute"
	TransitionCommitTransaction     = "commit_transaction"
	TransitionSucceed               = "succeed"
	TransitionFail                  = "fail"
)

// Transition is a named edge in the lifecycle state machine.
type Transition struct {
	Name string
	From State
	To   State
}

// transitions is the happy path. Order matters: it is the order a run moves
// through its phases.
var transitions = []Transition{
	{Name: TransitionCastAndValidateInputs, From: StateInitialized, To: StateCastingAndValidatingInputs},
	{Name: TransitionLoadRecords, From: StateCastingAndValidatingInputs, To: StateLoadingRecords},
	{Name: TransitionValidateRecords, From: StateLoadingRecords, To: StateValidatingRecords},
	{Name: TransitionOpenTransaction, From: StateValidatingRecords, To: StateOpeningTransaction},
	{Name: TransitionExecute, From: StateOpeningTransaction, To: StateExecuting},
	{Name: TransitionCommitTransaction, From: StateExecuting, To: StateCommittingTransaction},
	{Name: TransitionSucceed, From: StateCommittingTransaction, To: StateSucceeded},
}

// Terminal reports whether no further transitions leave the state.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// NextTransition returns the single happy-path transition leaving the given
// state. It returns false for terminal and unknown states.
func NextTransition(s State) (Transition, bool) {
	for _, t := range transitions {
		if t.From == s {
			return t, true
		}
	}
	return Transition{}, false
}

// Transitions returns the happy-path transition table in phase order.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// FailTransition returns the fail edge leaving the given state.
func FailTransition(from State) Transition {
	return Transition{Name: TransitionFail, From: from, To: StateFailed}
}
