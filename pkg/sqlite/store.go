// Package sqlite provides the SQLite-backed transaction manager for command
// definitions, using a pure Go driver with no CGo dependencies.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/plaenen/commandkit/pkg/command"
)

// Store owns a SQLite database and hands out transactions to command runs.
// It implements command.TransactionManager.
type Store struct {
	db *sql.DB
}

type storeConfig struct {
	// dsn is the data source name (file path or ":memory:" for in-memory)
	dsn string

	// maxOpenConns sets the maximum number of open connections
	maxOpenConns int

	// maxIdleConns sets the maximum number of idle connections
	maxIdleConns int

	// walMode enables write-ahead logging for better concurrency
	walMode bool

	// migrations are applied in version order on startup
	migrations []Migration
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		dsn:          "commands.db",
		maxOpenConns: 25,
		maxIdleConns: 5,
		walMode:      true,
	}
}

// Option configures a Store.
type Option func(*storeConfig)

// WithDSN sets the data source name (file path or ":memory:" for in-memory).
func WithDSN(dsn string) Option {
	return func(c *storeConfig) {
		c.dsn = dsn
	}
}

// WithMemoryDatabase sets the database to an in-memory database.
func WithMemoryDatabase() Option {
	return func(c *storeConfig) {
		c.dsn = ":memory:"
	}
}

// WithMaxOpenConns sets the maximum number of open connections to the database.
func WithMaxOpenConns(n int) Option {
	return func(c *storeConfig) {
		c.maxOpenConns = n
	}
}

// WithMaxIdleConns sets the maximum number of idle connections in the pool.
func WithMaxIdleConns(n int) Option {
	return func(c *storeConfig) {
		c.maxIdleConns = n
	}
}

// WithWALMode enables write-ahead logging for better concurrency.
// Recommended for production use but not available for :memory: databases.
func WithWALMode(enabled bool) Option {
	return func(c *storeConfig) {
		c.walMode = enabled
	}
}

// WithMigrations registers migrations applied in version order when the
// store opens.
func WithMigrations(migrations ...Migration) Option {
	return func(c *storeConfig) {
		c.migrations = append(c.migrations, migrations...)
	}
}

// New opens a SQLite store with the given options.
//
// Example usage:
//
//	// In-memory database for tests
//	store, err := sqlite.New(sqlite.WithMemoryDatabase())
//
//	// Custom configuration
//	store, err := sqlite.New(
//	    sqlite.WithDSN("/path/to/db"),
//	    sqlite.WithMaxOpenConns(50),
//	    sqlite.WithWALMode(true),
//	)
func New(opts ...Option) (*Store, error) {
	config := defaultStoreConfig()
	for _, opt := range opts {
		opt(&config)
	}

	db, err := sql.Open("sqlite", config.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// For :memory: databases we need a single connection. Otherwise each
	// connection gets its own isolated in-memory database.
	if config.dsn == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(config.maxOpenConns)
		db.SetMaxIdleConns(config.maxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db}

	if config.walMode && config.dsn != ":memory:" {
		if err := store.setWALMode(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	if len(config.migrations) > 0 {
		if err := Migrate(db, config.migrations); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return store, nil
}

func (s *Store) setWALMode() error {
	_, err := s.db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = ON;
	`)
	return err
}

// Begin opens a transaction for one command run.
func (s *Store) Begin(ctx context.Context) (command.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// DB exposes the underlying database for queries outside a command run.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx wraps one SQLite transaction in the command.Tx contract.
type Tx struct {
	tx *sql.Tx
}

// SQL exposes the raw transaction for statements.
func (t *Tx) SQL() *sql.Tx {
	return t.tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

// Unwrap extracts the raw sql.Tx from a run's transaction, when it came from
// this package:
//
//	tx, ok := sqlite.Unwrap(run.Transaction())
func Unwrap(t command.Tx) (*sql.Tx, bool) {
	st, ok := t.(*Tx)
	if !ok {
		return nil, false
	}
	return st.tx, true
}
