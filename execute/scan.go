package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

func aliasOf(t ast.TableFactor) string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.TableName
}

func (ex *Executor) schemaFor(ctx context.Context, table string) (*schema.Schema, error) {
	if isVirtualTable(table) {
		return virtualSchema(table), nil
	}
	s, err := ex.Store.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, gerrors.NewExecuteError(gerrors.TableNotFoundExec, "table not found: %s", table)
	}
	return s, nil
}

// scanTable is the Scan operator: it consumes Store.ScanData or,
// when the planner left an IndexItem on the TableFactor, Index.ScanIndexedData
// for the narrower range. The Filter operator downstream always re-applies
// the full WHERE predicate, so an approximate (inclusive-both-ends) bound
// here is safe even for a strict `<`/`>` comparison.
func (ex *Executor) scanTable(ctx context.Context, tf ast.TableFactor, outer *evaluate.RowContext) (RowIter, error) {
	if tf.Subquery != nil {
		return ex.scanSubquery(ctx, tf, outer)
	}

	alias := aliasOf(tf)
	s, err := ex.schemaFor(ctx, tf.TableName)
	if err != nil {
		return nil, err
	}
	var columns []string
	if !s.IsSchemaless() {
		columns = s.ColumnNames()
	}

	seq, err := ex.openScan(ctx, tf)
	if err != nil {
		return nil, err
	}

	return &funcRowIter{
		next: func(ctx context.Context) (*evaluate.RowContext, bool, error) {
			entry, ok, err := seq.Next(ctx)
			if err != nil || !ok {
				return nil, ok, err
			}
			return &evaluate.RowContext{
				Tables: map[string]evaluate.TableRow{
					alias: {Columns: columns, Row: entry.Row},
				},
				Outer: outer,
			}, true, nil
		},
		close: seq.Close,
	}, nil
}

func (ex *Executor) openScan(ctx context.Context, tf ast.TableFactor) (store.LazySequence, error) {
	if isVirtualTable(tf.TableName) {
		entries, err := ex.virtualRows(ctx, tf.TableName)
		if err != nil {
			return nil, err
		}
		return store.NewSliceSequence(entries), nil
	}
	if tf.Index != nil {
		if idx, ok := store.AsIndex(ex.Store); ok {
			from, to, asc, err := indexBounds(tf.Index)
			if err != nil {
				return nil, err
			}
			seq, err := idx.ScanIndexedData(ctx, tf.TableName, tf.Index.Name, from, to, asc)
			if err == nil {
				return seq, nil
			}
			// The planner chose an index the storage refused at scan time
			// (e.g. stale metadata); fall back to a full scan rather than
			// fail the whole statement.
		}
	}
	return ex.Store.ScanData(ctx, tf.TableName)
}

func indexBounds(item *ast.IndexItem) (from, to *value.Value, asc bool, err error) {
	asc = true
	if item.Asc != nil {
		asc = *item.Asc
	}
	if item.CmpExpr == nil {
		return nil, nil, asc, nil
	}
	lit, ok := item.CmpExpr.(*ast.Literal)
	if !ok {
		return nil, nil, asc, nil
	}
	v := lit.Value
	switch item.Op {
	case ast.IndexEq:
		return &v, &v, asc, nil
	case ast.IndexLt, ast.IndexLtEq:
		return nil, &v, asc, nil
	case ast.IndexGt, ast.IndexGtEq:
		return &v, nil, asc, nil
	default:
		return nil, nil, asc, nil
	}
}

// scanSubquery runs a derived table to completion and replays its projected
// rows as a single-alias relation; correlated derived tables are not in
// scope, so a derived table only sees its own outer chain, never the
// sibling relations of the query that contains it.
func (ex *Executor) scanSubquery(ctx context.Context, tf ast.TableFactor, outer *evaluate.RowContext) (RowIter, error) {
	alias := tf.Alias
	if alias == "" {
		alias = "_derived"
	}
	rows, labels, err := ex.runQueryRows(ctx, tf.Subquery, outer)
	if err != nil {
		return nil, err
	}
	out := make([]*evaluate.RowContext, len(rows))
	for i, row := range rows {
		out[i] = &evaluate.RowContext{
			Tables: map[string]evaluate.TableRow{
				alias: {Columns: labels, Row: store.NewVecRow(row)},
			},
			Outer: outer,
		}
	}
	return newSliceRowIter(out), nil
}
