package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

var errSchemalessSubquery = gerrors.NewExecuteError(gerrors.SchemalessTableDoesNotSupportColumn, "a subquery or derived table cannot project a schemaless wildcard")

// runFrom is the Scan+Join stage: it opens the base relation and folds in
// each Join left-to-right, the order the planner already fixed (
// leaves join reordering out of scope).
func (ex *Executor) runFrom(ctx context.Context, from *ast.TableWithJoins, outer *evaluate.RowContext) (RowIter, error) {
	iter, err := ex.scanTable(ctx, from.Relation, outer)
	if err != nil {
		return nil, err
	}
	for i := range from.Joins {
		iter, err = ex.joinIter(ctx, iter, from.Joins[i], outer)
		if err != nil {
			return nil, err
		}
	}
	return iter, nil
}

// runQuery drives the full operator chain for one Query body (
// Scan→Join→Filter→Aggregate→Having→Order→Limit pipeline) and returns the
// pre-projection row stream alongside the projection items and static
// output shape; callers apply the final Projection stage per row.
func (ex *Executor) runQuery(ctx context.Context, q *ast.Query, outer *evaluate.RowContext) (iter RowIter, items []ast.SelectItem, order []string, isMap bool, labels []string, err error) {
	switch body := q.Body.(type) {
	case ast.SelectSetExpr:
		sc := &body.Select
		iter, err = ex.runFrom(ctx, &sc.From, outer)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}
		iter = ex.filterIter(iter, sc.Selection)

		aggRoots := append(append(projectionExprs(sc.Projection), sc.Having), orderByExprs(q.OrderBy)...)
		aggs := collectAggregates(aggRoots)
		if len(aggs) > 0 || len(sc.GroupBy) > 0 {
			iter, err = ex.aggregateIter(ctx, iter, sc.GroupBy, aggs)
			if err != nil {
				return nil, nil, nil, false, nil, err
			}
		}
		iter = ex.filterIter(iter, sc.Having)

		iter, err = ex.orderIter(ctx, iter, q.OrderBy)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}
		iter, err = ex.limitOffsetIter(ctx, iter, q.Limit, q.Offset)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}

		order = tableOrder(&sc.From)
		isMap, labels, err = ex.projectionShape(ctx, sc, order)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}
		return iter, sc.Projection, order, isMap, labels, nil

	case ast.ValuesSetExpr:
		iter, labels, err = ex.valuesIter(ctx, body.Rows)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}
		iter, err = ex.orderIter(ctx, iter, q.OrderBy)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}
		iter, err = ex.limitOffsetIter(ctx, iter, q.Limit, q.Offset)
		if err != nil {
			return nil, nil, nil, false, nil, err
		}
		return iter, identItems(labels), []string{""}, false, labels, nil

	default:
		return nil, nil, nil, false, nil, nil
	}
}

// valuesIter evaluates every VALUES row's literals once up front and wraps
// each as a single-relation row under the anonymous table alias "", so the
// shared Order/Limit/Projection stages can treat a VALUES query exactly
// like a SELECT over a one-row-per-tuple relation.
func (ex *Executor) valuesIter(ctx context.Context, rows [][]ast.Expr) (RowIter, []string, error) {
	n := 0
	if len(rows) > 0 {
		n = len(rows[0])
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = columnLabel(i)
	}

	out := make([]*evaluate.RowContext, len(rows))
	ev := ex.evaluator(ctx, nil)
	for ri, row := range rows {
		vec := make([]value.Value, len(row))
		for i, e := range row {
			v, err := ev.Eval(e)
			if err != nil {
				return nil, nil, err
			}
			vec[i] = v
		}
		out[ri] = &evaluate.RowContext{
			Tables: map[string]evaluate.TableRow{"": {Columns: labels, Row: store.NewVecRow(vec)}},
		}
	}
	return newSliceRowIter(out), labels, nil
}

func identItems(labels []string) []ast.SelectItem {
	items := make([]ast.SelectItem, len(labels))
	for i, l := range labels {
		items[i] = ast.ExprItem{Expr: &ast.CompoundIdentifier{Table: "", Column: l}, Label: l}
	}
	return items
}

// runQueryRows drains a query to completion and projects every row into a
// plain value vector — the shape a subquery result or a derived table's
// replay needs. A SelectMap-shaped query (schemaless wildcard) is rejected
// here with errSchemalessSubquery, since a value vector has no place for
// map rows.
func (ex *Executor) runQueryRows(ctx context.Context, q *ast.Query, outer *evaluate.RowContext) ([][]value.Value, []string, error) {
	iter, items, order, isMap, labels, err := ex.runQuery(ctx, q, outer)
	if err != nil {
		return nil, nil, err
	}
	if isMap {
		return nil, nil, errSchemalessSubquery
	}
	rows, err := drainRows(ctx, iter)
	if err != nil {
		return nil, nil, err
	}
	out := make([][]value.Value, len(rows))
	for i, row := range rows {
		vec, _, err := ex.projectRow(ctx, row, items, order, false)
		if err != nil {
			return nil, nil, err
		}
		out[i] = vec
	}
	return out, labels, nil
}

// execQuery runs a top-level SELECT/VALUES statement to its Payload.
func (ex *Executor) execQuery(ctx context.Context, q *ast.Query, outer *evaluate.RowContext) (*Payload, error) {
	iter, items, order, isMap, labels, err := ex.runQuery(ctx, q, outer)
	if err != nil {
		return nil, err
	}
	rows, err := drainRows(ctx, iter)
	if err != nil {
		return nil, err
	}
	if isMap {
		out := make([]map[string]value.Value, len(rows))
		for i, row := range rows {
			_, m, err := ex.projectRow(ctx, row, items, order, true)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return &Payload{Kind: PayloadSelectMap, MapRows: out, Count: len(out)}, nil
	}
	out := make([][]value.Value, len(rows))
	for i, row := range rows {
		vec, _, err := ex.projectRow(ctx, row, items, order, false)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return &Payload{Kind: PayloadSelect, Labels: labels, Rows: out, Count: len(out)}, nil
}
