package command_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/plaenen/commandkit/pkg/command"
	"github.com/plaenen/commandkit/pkg/schema"
)

type addInputs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func newAdd() *command.Definition[addInputs, int] {
	return command.NewDefinition("Add", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		return r.Inputs.A + r.Inputs.B, nil
	})
}

type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return tx.commitErr
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeTxManager struct {
	tx        *fakeTx
	begins    int
	beginErr  error
	commitErr error
}

func (m *fakeTxManager) Begin(ctx context.Context) (command.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.begins++
	m.tx = &fakeTx{commitErr: m.commitErr}
	return m.tx, nil
}

func TestRunHappyPath(t *testing.T) {
	var finalState command.State
	def := newAdd().AfterSucceed(func(ctx context.Context, r *command.Run[addInputs]) error {
		finalState = r.State()
		return nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsSuccess() {
		t.Fatalf("expected success, got %v", outcome.Errors())
	}
	if got := outcome.Result(); got != 3 {
		t.Errorf("result = %d, want 3", got)
	}
	if finalState != command.StateSucceeded {
		t.Errorf("state after succeed = %s, want %s", finalState, command.StateSucceeded)
	}
}

func TestRunTransitionSequence(t *testing.T) {
	var seq []string
	def := newAdd().
		BeforeAnyTransition(func(ctx context.Context, r *command.Run[addInputs]) error {
			seq = append(seq, "before "+r.Transition().Name)
			return nil
		}).
		AfterAnyTransition(func(ctx context.Context, r *command.Run[addInputs]) error {
			seq = append(seq, "after "+r.Transition().Name)
			return nil
		})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("run failed: err=%v outcome=%+v", err, outcome)
	}

	want := []string{
		"before cast_and_validate_inputs", "after cast_and_validate_inputs",
		"before load_records", "after load_records",
		"before validate_records", "after validate_records",
		"before open_transaction", "after open_transaction",
		"before execute", "after execute",
		"before commit_transaction", "after commit_transaction",
		"before succeed", "after succeed",
	}
	if len(seq) != len(want) {
		t.Fatalf("got %d callback firings, want %d: %v", len(seq), len(want), seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Errorf("firing %d = %q, want %q", i, seq[i], want[i])
		}
	}
}

func TestWildcardHookFiresForEveryTransition(t *testing.T) {
	count := 0
	def := newAdd().BeforeAnyTransition(func(ctx context.Context, r *command.Run[addInputs]) error {
		count++
		return nil
	})

	if _, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if count != 7 {
		t.Errorf("wildcard before hook fired %d times, want 7", count)
	}
}

func TestCallbackPriorityOrder(t *testing.T) {
	var order []int
	record := func(n int) command.Hook[addInputs] {
		return func(ctx context.Context, r *command.Run[addInputs]) error {
			order = append(order, n)
			return nil
		}
	}

	def := newAdd().
		BeforeExecute(record(10), command.WithPriority(10)).
		BeforeExecute(record(5), command.WithPriority(5)).
		BeforeExecute(record(6), command.WithPriority(5))

	if _, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{5, 6, 10}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCastFailureNeverExecutes(t *testing.T) {
	executed := false
	def := command.NewDefinition("Add", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		executed = true
		return 0, nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": "x", "b": 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	if executed {
		t.Error("execute ran on invalid inputs")
	}

	errs := outcome.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	e := errs[0]
	if e.Symbol != schema.SymbolCannotCast {
		t.Errorf("symbol = %q, want %q", e.Symbol, schema.SymbolCannotCast)
	}
	if len(e.Path) != 1 || e.Path[0] != "a" {
		t.Errorf("path = %v, want [a]", e.Path)
	}
	if e.Category != command.CategoryData {
		t.Errorf("category = %q, want %q", e.Category, command.CategoryData)
	}
}

func TestMissingAttributesAllReported(t *testing.T) {
	def := newAdd()

	outcome, err := def.Run(context.Background(), command.Attributes{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}

	errs := outcome.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Symbol != schema.SymbolMissingRequiredAttribute {
			t.Errorf("symbol = %q, want %q", e.Symbol, schema.SymbolMissingRequiredAttribute)
		}
	}
	if errs[0].Path[0] != "a" || errs[1].Path[0] != "b" {
		t.Errorf("paths = %v, %v; want declaration order a, b", errs[0].Path, errs[1].Path)
	}
}

func TestUnexpectedAttributeRejected(t *testing.T) {
	executed := false
	def := command.NewDefinition("Add", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		executed = true
		return 0, nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2, "c": 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	if executed {
		t.Error("execute ran despite unexpected attribute")
	}
	errs := outcome.Errors()
	if len(errs) != 1 || errs[0].Symbol != schema.SymbolUnexpectedAttribute {
		t.Fatalf("errors = %v, want one unexpected_attribute", errs)
	}
	if errs[0].Path[0] != "c" {
		t.Errorf("path = %v, want [c]", errs[0].Path)
	}
}

func TestScratchValueVisibleToExecute(t *testing.T) {
	def := command.NewDefinition("AddMaybeDoubled", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		sum := r.Inputs.A + r.Inputs.B
		if v, ok := r.Value("doubled"); ok && v == true {
			return sum * 2, nil
		}
		return sum, nil
	}).BeforeExecute(func(ctx context.Context, r *command.Run[addInputs]) error {
		r.Set("doubled", true)
		return nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 2, "b": 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := outcome.Result(); got != 10 {
		t.Errorf("result = %d, want 10", got)
	}
}

func TestAroundCallbacksWrapByPriority(t *testing.T) {
	var seq []string
	wrap := func(label string) command.AroundHook[addInputs] {
		return func(ctx context.Context, r *command.Run[addInputs], next command.Next) error {
			seq = append(seq, label+" enter")
			err := next(ctx)
			seq = append(seq, label+" exit")
			return err
		}
	}

	def := newAdd()
	def.AroundExecute(wrap("inner"), command.WithPriority(2))
	def.AroundExecute(wrap("outer"), command.WithPriority(1))
	def.BeforeExecute(func(ctx context.Context, r *command.Run[addInputs]) error {
		seq = append(seq, "before")
		return nil
	})
	def.AfterExecute(func(ctx context.Context, r *command.Run[addInputs]) error {
		seq = append(seq, "after")
		return nil
	})

	if _, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"before", "outer enter", "inner enter", "inner exit", "outer exit", "after"}
	if fmt.Sprint(seq) != fmt.Sprint(want) {
		t.Errorf("sequence = %v, want %v", seq, want)
	}
}

func TestAroundCanReplaceContext(t *testing.T) {
	type ctxKey struct{}
	var seen any

	def := command.NewDefinition("CtxProbe", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		seen = ctx.Value(ctxKey{})
		return 0, nil
	}).AroundExecute(func(ctx context.Context, r *command.Run[addInputs], next command.Next) error {
		return next(context.WithValue(ctx, ctxKey{}, "injected"))
	})

	if _, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if seen != "injected" {
		t.Errorf("execute saw ctx value %v, want injected", seen)
	}
}

func TestAroundSkippingNextSkipsAction(t *testing.T) {
	executed := false
	def := command.NewDefinition("Skipped", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		executed = true
		return 99, nil
	}).AroundExecute(func(ctx context.Context, r *command.Run[addInputs], next command.Next) error {
		return nil // never calls next
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if executed {
		t.Error("execute ran although the around hook skipped next")
	}
	if !outcome.IsSuccess() || outcome.Result() != 0 {
		t.Errorf("outcome = %+v, want success with zero result", outcome)
	}
}

func TestNonHaltingErrorsAccumulate(t *testing.T) {
	var finalState command.State
	def := command.NewDefinition("Risky", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		r.AddRuntimeError("first_problem", "first")
		r.AddRuntimeError("second_problem", "second")
		return 42, nil
	}).AfterSucceed(func(ctx context.Context, r *command.Run[addInputs]) error {
		finalState = r.State()
		return nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	errs := outcome.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Symbol != "first_problem" || errs[1].Symbol != "second_problem" {
		t.Errorf("symbols = %q, %q; want insertion order preserved", errs[0].Symbol, errs[1].Symbol)
	}
	// The run still walked the whole lifecycle.
	if finalState != command.StateSucceeded {
		t.Errorf("final state = %s, want %s", finalState, command.StateSucceeded)
	}
}

func TestHaltingErrorShortCircuits(t *testing.T) {
	reached := false
	def := command.NewDefinition("Halting", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		if err := r.AddRuntimeError("cannot_continue", "stopping here", command.WithHalt()); err != nil {
			return 0, err
		}
		reached = true
		return 1, nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	if reached {
		t.Error("code after the halting error ran")
	}
	errs := outcome.Errors()
	if len(errs) != 1 || errs[0].Symbol != "cannot_continue" {
		t.Fatalf("errors = %v, want exactly the halting error", errs)
	}
	if !errs[0].Halt {
		t.Error("error not marked halting")
	}
}

func TestPhaseErrorHaltsBeforeExecute(t *testing.T) {
	executed := false
	def := command.NewDefinition("Guarded", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		executed = true
		return 0, nil
	}).UseRecordValidator(func(ctx context.Context, r *command.Run[addInputs]) error {
		// Non-halting, but recorded before execute: the run must not proceed.
		r.AddInputError([]string{"a"}, "too_small", "a must be larger")
		return nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	if executed {
		t.Error("execute ran despite a recorded validation error")
	}
}

func TestRecordLoaderAndValidator(t *testing.T) {
	def := command.NewDefinition("WithRecords", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		rec, ok := r.Record("account")
		if !ok {
			return 0, errors.New("record missing")
		}
		return rec.(int) + r.Inputs.A, nil
	}).UseRecordLoader(func(ctx context.Context, r *command.Run[addInputs]) error {
		r.SetRecord("account", 100)
		return nil
	}).UseRecordValidator(func(ctx context.Context, r *command.Run[addInputs]) error {
		if _, ok := r.Record("account"); !ok {
			return r.AddRuntimeError("record_not_loaded", "loader did not run", command.WithHalt())
		}
		return nil
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsSuccess() {
		t.Fatalf("expected success, got %v", outcome.Errors())
	}
	if got := outcome.Result(); got != 101 {
		t.Errorf("result = %d, want 101", got)
	}
}

func TestTransactionCommittedOnSuccess(t *testing.T) {
	txm := &fakeTxManager{}
	var sawTx bool
	def := command.NewDefinition("Tx", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		sawTx = r.Transaction() != nil
		return 0, nil
	}).UseTransactionManager(txm)

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("run failed: err=%v", err)
	}
	if !sawTx {
		t.Error("execute did not see the open transaction")
	}
	if txm.begins != 1 {
		t.Errorf("begins = %d, want 1", txm.begins)
	}
	if !txm.tx.committed || txm.tx.rolledBack {
		t.Errorf("tx committed=%v rolledBack=%v, want committed only", txm.tx.committed, txm.tx.rolledBack)
	}
}

func TestTransactionRolledBackOnFailure(t *testing.T) {
	txm := &fakeTxManager{}
	def := command.NewDefinition("TxFail", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		return 0, r.AddRuntimeError("nope", "refusing", command.WithHalt())
	}).UseTransactionManager(txm)

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	if txm.tx.committed || !txm.tx.rolledBack {
		t.Errorf("tx committed=%v rolledBack=%v, want rolled back only", txm.tx.committed, txm.tx.rolledBack)
	}
}

func TestBeginFailureIsAFault(t *testing.T) {
	txm := &fakeTxManager{beginErr: errors.New("pool exhausted")}
	def := newAdd().UseTransactionManager(txm)

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err == nil {
		t.Fatal("expected a fault from Begin")
	}
	if outcome != nil {
		t.Errorf("outcome = %+v, want nil on fault", outcome)
	}
	if !strings.Contains(err.Error(), "pool exhausted") {
		t.Errorf("fault = %v, want wrapped Begin error", err)
	}
}

func TestCommitFailureIsAFault(t *testing.T) {
	txm := &fakeTxManager{commitErr: errors.New("disk full")}
	def := newAdd().UseTransactionManager(txm)

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err == nil {
		t.Fatal("expected a fault from Commit")
	}
	if outcome != nil {
		t.Errorf("outcome = %+v, want nil on fault", outcome)
	}
	if txm.tx.rolledBack {
		t.Error("tx rolled back after a failed commit")
	}
}

func TestHookFaultPropagatesAndRollsBack(t *testing.T) {
	txm := &fakeTxManager{}
	bug := errors.New("hook bug")
	def := newAdd().
		UseTransactionManager(txm).
		BeforeCommitTransaction(func(ctx context.Context, r *command.Run[addInputs]) error {
			return bug
		})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if !errors.Is(err, bug) {
		t.Fatalf("err = %v, want the hook bug", err)
	}
	if outcome != nil {
		t.Errorf("outcome = %+v, want nil on fault", outcome)
	}
	if !txm.tx.rolledBack {
		t.Error("open tx not rolled back on fault")
	}
}

func TestExecuteErrorConvertsToExecutionError(t *testing.T) {
	def := command.NewDefinition("Errs", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		return 0, errors.New("db exploded")
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	errs := outcome.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Symbol != command.SymbolExecutionError {
		t.Errorf("symbol = %q, want %q", errs[0].Symbol, command.SymbolExecutionError)
	}
	if !strings.Contains(errs[0].Message, "db exploded") {
		t.Errorf("message = %q, want the original error text", errs[0].Message)
	}
	if errs[0].Category != command.CategoryRuntime {
		t.Errorf("category = %q, want %q", errs[0].Category, command.CategoryRuntime)
	}
}

func TestExecutePanicConvertsToExecutionError(t *testing.T) {
	txm := &fakeTxManager{}
	def := command.NewDefinition("Panics", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		panic("kaboom")
	}).UseTransactionManager(txm)

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	errs := outcome.Errors()
	if len(errs) != 1 || errs[0].Symbol != command.SymbolExecutionError {
		t.Fatalf("errors = %v, want one execution_error", errs)
	}
	if !strings.Contains(errs[0].Message, "kaboom") {
		t.Errorf("message = %q, want panic text", errs[0].Message)
	}
	if errs[0].Context["panic"] != true {
		t.Errorf("context = %v, want panic marker", errs[0].Context)
	}
	if !txm.tx.rolledBack {
		t.Error("tx not rolled back after execute panic")
	}
}

func TestContextCancellationIsAFault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := newAdd().Run(ctx, command.Attributes{"a": 1, "b": 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if outcome != nil {
		t.Errorf("outcome = %+v, want nil on cancellation", outcome)
	}
}

func TestFailPathHooksFire(t *testing.T) {
	var seq []string
	def := command.NewDefinition("FailsLoudly", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		return 0, r.AddRuntimeError("boom", "boom", command.WithHalt())
	}).
		BeforeTransitionTo(command.StateFailed, func(ctx context.Context, r *command.Run[addInputs]) error {
			seq = append(seq, "before fail from "+string(r.Transition().From))
			return nil
		}).
		AfterTransitionTo(command.StateFailed, func(ctx context.Context, r *command.Run[addInputs]) error {
			seq = append(seq, "after fail in "+string(r.State()))
			return nil
		})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
	want := []string{"before fail from opening_transaction", "after fail in failed"}
	if fmt.Sprint(seq) != fmt.Sprint(want) {
		t.Errorf("sequence = %v, want %v", seq, want)
	}
}

func TestBeforeHookCanHalt(t *testing.T) {
	executed := false
	def := command.NewDefinition("Vetoed", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		executed = true
		return 0, nil
	}).BeforeExecute(func(ctx context.Context, r *command.Run[addInputs]) error {
		return r.AddRuntimeError("vetoed", "not today", command.WithHalt())
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if executed {
		t.Error("execute ran after a halting before hook")
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}
}

func TestRunInputsSkipsCastingButKeepsRules(t *testing.T) {
	type signupInputs struct {
		Email string `json:"email" valid:"email"`
	}
	def := command.NewDefinition("Signup", func(ctx context.Context, r *command.Run[signupInputs]) (string, error) {
		return r.Inputs.Email, nil
	})

	t.Run("Valid", func(t *testing.T) {
		outcome, err := def.RunInputs(context.Background(), signupInputs{Email: "ada@example.com"})
		if err != nil || !outcome.IsSuccess() {
			t.Fatalf("err=%v outcome=%+v", err, outcome)
		}
		if outcome.Result() != "ada@example.com" {
			t.Errorf("result = %q", outcome.Result())
		}
	})

	t.Run("RuleViolation", func(t *testing.T) {
		outcome, err := def.RunInputs(context.Background(), signupInputs{Email: "not-an-email"})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if !outcome.IsFailure() {
			t.Fatal("expected failure outcome")
		}
		errs := outcome.Errors()
		if len(errs) != 1 || errs[0].Symbol != schema.SymbolInvalidAttribute {
			t.Fatalf("errors = %v, want one invalid_attribute", errs)
		}
	})
}

func TestRunMetadata(t *testing.T) {
	var md command.Metadata
	def := newAdd().BeforeExecute(func(ctx context.Context, r *command.Run[addInputs]) error {
		md = r.Metadata()
		return nil
	})

	ctx := command.WithCorrelationID(context.Background(), "corr-123")
	ctx = command.WithPrincipalID(ctx, "user-9")
	if _, err := def.Run(ctx, command.Attributes{"a": 1, "b": 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if md.RunID == "" {
		t.Error("run id not stamped")
	}
	if md.CorrelationID != "corr-123" {
		t.Errorf("correlation id = %q, want corr-123", md.CorrelationID)
	}
	if md.PrincipalID != "user-9" {
		t.Errorf("principal id = %q, want user-9", md.PrincipalID)
	}
	if md.StartedAt.IsZero() {
		t.Error("started at not stamped")
	}
}

func TestDefinitionPanicsOnMissingPieces(t *testing.T) {
	t.Run("NoName", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for empty name")
			}
		}()
		command.NewDefinition("", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
			return 0, nil
		})
	})

	t.Run("NoExecute", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for nil execute")
			}
		}()
		command.NewDefinition[addInputs, int]("Add", nil)
	})
}
