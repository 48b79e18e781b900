// Package execute is the streaming interpreter: it drives the
// Scan/Filter/Join/Aggregate/Having/Order/Limit/Projection operator chain
// for queries, the DML/DDL statement handlers, and the SHOW/virtual-table
// introspection surface, all against the store.Store/StoreMut capability
// contract. It never parses SQL or resolves names itself — those are
// translate's and plan's jobs; execute only interprets an already-planned
// ast.Statement.
package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// Executor threads one storage and its options through every statement a
// Glue handle runs. It is cheap to construct and carries no state across
// statements beyond what Store itself keeps, except an explicit transaction
// (tx/base) that stays open from BEGIN until COMMIT or ROLLBACK.
type Executor struct {
	Store store.Store
	Opts  ExecOptions

	// tx and base are non-nil only between an explicit BEGIN and its
	// matching COMMIT/ROLLBACK: tx is the transactional handle COMMIT and
	// ROLLBACK call, base is the storage Store is restored to afterward.
	tx   store.Transaction
	base store.Store
}

func New(st store.Store, opts ExecOptions) *Executor {
	return &Executor{Store: st, Opts: opts}
}

// Exec dispatches one planned statement to its handler and returns the
// uniform Payload envelope.
func (ex *Executor) Exec(ctx context.Context, stmt ast.Statement) (*Payload, error) {
	switch n := stmt.(type) {
	case *ast.QueryStmt:
		return ex.execQuery(ctx, &n.Body, nil)
	case *ast.InsertStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execInsert(ctx, n) })
	case *ast.UpdateStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execUpdate(ctx, n) })
	case *ast.DeleteStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execDelete(ctx, n) })
	case *ast.CreateTableStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execCreateTable(ctx, n) })
	case *ast.DropTableStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execDropTable(ctx, n) })
	case *ast.AlterTableStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execAlterTable(ctx, n) })
	case *ast.CreateIndexStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execCreateIndex(ctx, n) })
	case *ast.DropIndexStmt:
		return ex.withAutocommit(ctx, func(ctx context.Context) (*Payload, error) { return ex.execDropIndex(ctx, n) })
	case *ast.ShowColumnsStmt:
		return ex.execShowColumns(ctx, n)
	case *ast.ShowIndexesStmt:
		return ex.execShowIndexes(ctx, n)
	case *ast.ShowVariableStmt:
		return ex.execShowVariable(ctx, n)
	case *ast.StartTransactionStmt:
		return ex.execStartTransaction(ctx)
	case *ast.CommitStmt:
		return ex.execCommit(ctx)
	case *ast.RollbackStmt:
		return ex.execRollback(ctx)
	default:
		return nil, gerrors.NewStorageMsg("unreachable: unhandled statement type %T", stmt)
	}
}

// RunSubquery implements evaluate.SubqueryRunner: it plans nothing itself
// (the subquery tree was already planned, with Correlated refs tagged, by
// the plan stage before execute ever saw it) and simply drives the same
// query pipeline used for a top-level SELECT, chaining outer as the row
// context's Outer link so a correlated reference resolves against the
// driving row.
func (ex *Executor) RunSubquery(ctx context.Context, q *ast.Query, outer *evaluate.RowContext) ([]evaluate.Row, error) {
	rows, _, err := ex.runQueryRows(ctx, q, outer)
	if err != nil {
		return nil, err
	}
	out := make([]evaluate.Row, len(rows))
	for i, r := range rows {
		out[i] = evaluate.Row(r)
	}
	return out, nil
}

func (ex *Executor) evaluator(ctx context.Context, row *evaluate.RowContext) *evaluate.Evaluator {
	return &evaluate.Evaluator{Ctx: ctx, Runner: ex, Row: row}
}

func (ex *Executor) evalValue(ctx context.Context, e ast.Expr, row *evaluate.RowContext) (value.Value, error) {
	return ex.evaluator(ctx, row).Eval(e)
}

func (ex *Executor) evalBool(ctx context.Context, e ast.Expr, row *evaluate.RowContext) (bool, error) {
	if e == nil {
		return true, nil
	}
	v, err := ex.evalValue(ctx, e, row)
	if err != nil {
		return false, err
	}
	return v.IsTruthy(), nil
}
