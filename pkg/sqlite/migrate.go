package sqlite

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Migration is a single schema migration. Versions must be unique; Down is
// optional and only used by tooling.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrate applies every pending migration in version order, each inside its
// own transaction. Applied versions are tracked in schema_migrations.
func Migrate(db *sql.DB, migrations []Migration) error {
	if err := ensureMigrationTable(db); err != nil {
		return fmt.Errorf("failed to ensure migration table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read current version: %w", err)
	}

	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for _, m := range ordered {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %06d_%s failed: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func ensureMigrationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	return err
}

func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, time.Now().Unix(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version, 0 when none.
func SchemaVersion(db *sql.DB) (int, error) {
	if err := ensureMigrationTable(db); err != nil {
		return 0, err
	}
	return currentVersion(db)
}
