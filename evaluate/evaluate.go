// Package evaluate is the expression interpreter: given a row
// context it walks an ast.Expr tree and produces a single value.Value,
// honoring three-valued-logic null propagation throughout. It never touches
// storage directly; subqueries are dispatched back into execute through the
// SubqueryRunner it is constructed with, keeping the import graph acyclic.
package evaluate

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// TableRow is one joined relation's contribution to the current row.
type TableRow struct {
	Columns []string
	Row     store.DataRow
}

// RowContext is the row-plus-scope an expression is evaluated against. It
// chains to Outer so a correlated subquery can reach back into the row that
// is driving it.
type RowContext struct {
	Tables     map[string]TableRow
	Aggregates map[*ast.Aggregate]value.Value
	Outer      *RowContext
}

func (rc *RowContext) get(table, column string) (value.Value, bool) {
	if rc == nil {
		return value.Value{}, false
	}
	if t, ok := rc.Tables[table]; ok {
		if v, ok := t.Row.Get(column, t.Columns); ok {
			return v, true
		}
	}
	return rc.Outer.get(table, column)
}

func (rc *RowContext) aggregate(node *ast.Aggregate) (value.Value, bool) {
	if rc == nil {
		return value.Value{}, false
	}
	if v, ok := rc.Aggregates[node]; ok {
		return v, true
	}
	return rc.Outer.aggregate(node)
}

// Row is one projected result row, used for subquery results.
type Row []value.Value

// SubqueryRunner executes a planned subquery to completion and returns its
// projected rows. execute.Executor implements this; evaluate only depends
// on the interface, never on the execute package itself.
type SubqueryRunner interface {
	RunSubquery(ctx context.Context, q *ast.Query, outer *RowContext) ([]Row, error)
}

// Evaluator threads the pieces an expression tree needs to resolve itself:
// the ambient context, the subquery callback, and the current row.
type Evaluator struct {
	Ctx    context.Context
	Runner SubqueryRunner
	Row    *RowContext
}

// Eval interprets e against the evaluator's current row.
func (ev *Evaluator) Eval(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Identifier:
		return value.Value{}, gerrors.NewEvaluateError(gerrors.ValueNotFound, "unresolved identifier: %s (plan stage should have qualified it)", n.Name)
	case *ast.CompoundIdentifier:
		v, ok := ev.Row.get(n.Table, n.Column)
		if !ok {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.ValueNotFound, "column not found: %s.%s", n.Table, n.Column)
		}
		return v, nil
	case *ast.BinaryOpExpr:
		return ev.evalBinary(n)
	case *ast.UnaryOpExpr:
		return ev.evalUnary(n)
	case *ast.IsNullExpr:
		return ev.evalIsNull(n)
	case *ast.BetweenExpr:
		return ev.evalBetween(n)
	case *ast.InListExpr:
		return ev.evalInList(n)
	case *ast.InSubqueryExpr:
		return ev.evalInSubquery(n)
	case *ast.ExistsExpr:
		return ev.evalExists(n)
	case *ast.SubqueryExpr:
		return ev.evalScalarSubquery(n)
	case *ast.CaseExpr:
		return ev.evalCase(n)
	case *ast.CastExpr:
		return ev.evalCast(n)
	case *ast.TypedStringExpr:
		return ev.evalTypedString(n)
	case *ast.FunctionCallExpr:
		return ev.evalFunctionCall(n)
	case *ast.Aggregate:
		v, ok := ev.Row.aggregate(n)
		if !ok {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.ValueNotFound, "aggregate value not available outside GROUP BY context")
		}
		return v, nil
	case *ast.NestedExpr:
		return ev.Eval(n.Inner)
	case *ast.ArrayExpr:
		return ev.evalArray(n)
	case *ast.ArrayIndexExpr:
		return ev.evalArrayIndex(n)
	case *ast.IntervalExpr:
		return ev.evalInterval(n)
	default:
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported expression: %T", e)
	}
}
