package command_test

import (
	"context"
	"testing"

	"github.com/plaenen/commandkit/pkg/command"
)

// Each convenience wrapper must target exactly one transition.
func TestConvenienceWrappersTargetTheirTransition(t *testing.T) {
	fired := map[string]int{}
	mark := func(name string) command.Hook[addInputs] {
		return func(ctx context.Context, r *command.Run[addInputs]) error {
			fired[name]++
			if got := r.Transition().Name; got != name {
				t.Errorf("hook for %s fired on %s", name, got)
			}
			return nil
		}
	}

	def := newAdd().
		BeforeCastAndValidateInputs(mark(command.TransitionCastAndValidateInputs)).
		BeforeLoadRecords(mark(command.TransitionLoadRecords)).
		BeforeValidateRecords(mark(command.TransitionValidateRecords)).
		BeforeOpenTransaction(mark(command.TransitionOpenTransaction)).
		BeforeExecute(mark(command.TransitionExecute)).
		BeforeCommitTransaction(mark(command.TransitionCommitTransaction)).
		BeforeSucceed(mark(command.TransitionSucceed))

	if _, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, tr := range command.Transitions() {
		if fired[tr.Name] != 1 {
			t.Errorf("hook for %s fired %d times, want 1", tr.Name, fired[tr.Name])
		}
	}
}

func TestFromAndToMatchers(t *testing.T) {
	var fromSeen, toSeen []string

	def := newAdd().
		BeforeTransitionFrom(command.StateOpeningTransaction, func(ctx context.Context, r *command.Run[addInputs]) error {
			fromSeen = append(fromSeen, r.Transition().Name)
			return nil
		}).
		BeforeTransitionTo(command.StateExecuting, func(ctx context.Context, r *command.Run[addInputs]) error {
			toSeen = append(toSeen, r.Transition().Name)
			return nil
		})

	if _, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Only the execute transition leaves opening_transaction and enters
	// executing.
	if len(fromSeen) != 1 || fromSeen[0] != command.TransitionExecute {
		t.Errorf("from matcher fired for %v", fromSeen)
	}
	if len(toSeen) != 1 || toSeen[0] != command.TransitionExecute {
		t.Errorf("to matcher fired for %v", toSeen)
	}
}

func TestCallbacksForAccessors(t *testing.T) {
	def := newAdd().
		BeforeExecute(func(ctx context.Context, r *command.Run[addInputs]) error { return nil }).
		AroundExecute(func(ctx context.Context, r *command.Run[addInputs], next command.Next) error {
			return next(ctx)
		})

	execute := command.Transitions()[4]
	if execute.Name != command.TransitionExecute {
		t.Fatalf("transition table order changed: %+v", execute)
	}

	if !def.HasCallbacks() {
		t.Error("HasCallbacks = false")
	}
	if got := len(def.CallbacksFor(command.PhaseBefore, execute)); got != 1 {
		t.Errorf("before callbacks = %d, want 1", got)
	}
	if got := len(def.CallbacksFor(command.PhaseAfter, execute)); got != 0 {
		t.Errorf("after callbacks = %d, want 0", got)
	}
	if got := len(def.AroundCallbacksFor(execute)); got != 1 {
		t.Errorf("around callbacks = %d, want 1", got)
	}
}
