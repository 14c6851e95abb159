package sqlite_test

import (
	"context"
	"testing"

	"github.com/plaenen/commandkit/pkg/command"
	"github.com/plaenen/commandkit/pkg/sqlite"
)

var testMigrations = []sqlite.Migration{
	{
		Version: 1,
		Name:    "create_notes",
		Up:      `CREATE TABLE notes (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT NOT NULL)`,
		Down:    `DROP TABLE notes`,
	},
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(
		sqlite.WithMemoryDatabase(),
		sqlite.WithMigrations(testMigrations...),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func countNotes(t *testing.T, store *sqlite.Store) int {
	t.Helper()
	var n int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		t.Fatalf("count notes: %v", err)
	}
	return n
}

func TestMigrationsApplyOnce(t *testing.T) {
	store := newTestStore(t)

	version, err := sqlite.SchemaVersion(store.DB())
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	// Re-applying is a no-op.
	if err := sqlite.Migrate(store.DB(), testMigrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestTransactionCommit(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	raw, ok := sqlite.Unwrap(tx)
	if !ok {
		t.Fatal("unwrap failed")
	}
	if _, err := raw.Exec("INSERT INTO notes (body) VALUES (?)", "hello"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if got := countNotes(t, store); got != 1 {
		t.Errorf("notes = %d, want 1", got)
	}
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	raw, _ := sqlite.Unwrap(tx)
	if _, err := raw.Exec("INSERT INTO notes (body) VALUES (?)", "doomed"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if got := countNotes(t, store); got != 0 {
		t.Errorf("notes = %d, want 0", got)
	}
}

// A failing command must leave no trace in the database.
func TestCommandRollsBackOnFailure(t *testing.T) {
	store := newTestStore(t)

	type noteInputs struct {
		Body string `json:"body"`
		Fail bool   `json:"fail"`
	}
	def := command.NewDefinition("CreateNote", func(ctx context.Context, r *command.Run[noteInputs]) (int64, error) {
		tx, _ := sqlite.Unwrap(r.Transaction())
		res, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", r.Inputs.Body)
		if err != nil {
			return 0, err
		}
		if r.Inputs.Fail {
			return 0, r.AddRuntimeError("refused", "asked to fail", command.WithHalt())
		}
		return res.LastInsertId()
	}).UseTransactionManager(store)

	outcome, err := def.Run(context.Background(), command.Attributes{"body": "kept", "fail": false})
	if err != nil || !outcome.IsSuccess() {
		t.Fatalf("run failed: err=%v outcome=%+v", err, outcome)
	}

	outcome, err = def.Run(context.Background(), command.Attributes{"body": "dropped", "fail": true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}

	if got := countNotes(t, store); got != 1 {
		t.Errorf("notes = %d, want only the committed row", got)
	}
}
