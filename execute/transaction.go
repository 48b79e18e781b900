package execute

import (
	"context"
	"log/slog"

	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/store"
)

// execStartTransaction begins an explicit transaction against the current
// storage and swaps ex.Store for the snapshot Begin hands back, so every
// later statement on this Executor runs against that snapshot until COMMIT
// or ROLLBACK restores the original storage.
func (ex *Executor) execStartTransaction(ctx context.Context) (*Payload, error) {
	if ex.tx != nil {
		return nil, gerrors.NewExecuteError(gerrors.NestedTransactionNotSupported, "a transaction is already in progress")
	}
	t, ok := store.AsTransaction(ex.Store)
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.TransactionNotSupported, "storage does not support transactions")
	}
	next, err := t.Begin(ctx, false)
	if err != nil {
		return nil, err
	}
	ns, ok := next.(store.Store)
	if !ok {
		return nil, gerrors.NewStorageMsg("unreachable: Transaction.Begin result does not implement store.Store")
	}
	slog.Debug("transaction started")
	ex.base = ex.Store
	ex.tx = next
	ex.Store = ns
	return &Payload{Kind: PayloadStartTransaction}, nil
}

func (ex *Executor) execCommit(ctx context.Context) (*Payload, error) {
	if ex.tx == nil {
		return nil, gerrors.NewExecuteError(gerrors.TransactionNotSupported, "no transaction is in progress")
	}
	if err := ex.tx.Commit(ctx); err != nil {
		return nil, err
	}
	slog.Debug("transaction committed")
	ex.Store = ex.base
	ex.base = nil
	ex.tx = nil
	return &Payload{Kind: PayloadCommit}, nil
}

func (ex *Executor) execRollback(ctx context.Context) (*Payload, error) {
	if ex.tx == nil {
		return nil, gerrors.NewExecuteError(gerrors.TransactionNotSupported, "no transaction is in progress")
	}
	if err := ex.tx.Rollback(ctx); err != nil {
		return nil, err
	}
	slog.Debug("transaction rolled back")
	ex.Store = ex.base
	ex.base = nil
	ex.tx = nil
	return &Payload{Kind: PayloadRollback}, nil
}

// withAutocommit runs fn against a one-statement transaction when the
// storage supports transactions, no explicit BEGIN is already open, and
// ExecOptions.Autocommit asks for it: the statement either commits whole or
// rolls back whole, never leaving a half-applied DDL/DML change behind.
func (ex *Executor) withAutocommit(ctx context.Context, fn func(ctx context.Context) (*Payload, error)) (*Payload, error) {
	if ex.tx != nil || !ex.Opts.Autocommit {
		return fn(ctx)
	}
	t, ok := store.AsTransaction(ex.Store)
	if !ok {
		return fn(ctx)
	}
	next, err := t.Begin(ctx, true)
	if err != nil {
		return nil, err
	}
	ns, ok := next.(store.Store)
	if !ok {
		return nil, gerrors.NewStorageMsg("unreachable: Transaction.Begin result does not implement store.Store")
	}
	saved := ex.Store
	ex.Store = ns
	payload, err := fn(ctx)
	ex.Store = saved
	if err != nil {
		if rbErr := next.Rollback(ctx); rbErr != nil {
			slog.Debug("autocommit rollback failed", "error", rbErr)
		}
		return nil, err
	}
	if err := next.Commit(ctx); err != nil {
		return nil, err
	}
	return payload, nil
}
