package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}

// NoTransactions runs fn directly. Stores without multi-record transactions
// (the document store, the in-memory store) use it.
type NoTransactions struct{}

// ExecTx calls fn with ctx unchanged
func (NoTransactions) ExecTx(ctx context.Context, fn TxFn) error {
	return fn(ctx)
}
