package command

import "context"

// Tx is one open transaction. It is acquired during the open_transaction
// phase and released exactly once per run: committed on the happy path,
// rolled back when the run fails or a fault propagates.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager opens transactions for runs of one definition. An open
// transaction is never shared across runs.
type TransactionManager interface {
	Begin(ctx context.Context) (Tx, error)
}
