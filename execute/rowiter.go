package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/evaluate"
)

// RowIter is the async-iterator abstraction operators compose over, lifted
// one level above store.LazySequence: each element is a fully joined
// evaluate.RowContext rather than a single table's (Key, DataRow) pair.
type RowIter interface {
	Next(ctx context.Context) (*evaluate.RowContext, bool, error)
	Close() error
}

// funcRowIter adapts a pair of closures into a RowIter, the way
// store.SliceSequence adapts a slice; operators that don't need their own
// named type (Filter, Limit, Offset) build one of these.
type funcRowIter struct {
	next  func(ctx context.Context) (*evaluate.RowContext, bool, error)
	close func() error
}

func (it *funcRowIter) Next(ctx context.Context) (*evaluate.RowContext, bool, error) {
	return it.next(ctx)
}

func (it *funcRowIter) Close() error {
	if it.close == nil {
		return nil
	}
	return it.close()
}

// sliceRowIter adapts a pre-materialized slice, used by the operators that
// must consume their source fully before they can emit anything: Order
// (needs every row before it can sort) and Aggregate (needs every row
// before a group's running state is final).
type sliceRowIter struct {
	rows []*evaluate.RowContext
	pos  int
}

func newSliceRowIter(rows []*evaluate.RowContext) *sliceRowIter {
	return &sliceRowIter{rows: rows}
}

func (it *sliceRowIter) Next(ctx context.Context) (*evaluate.RowContext, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if it.pos >= len(it.rows) {
		return nil, false, nil
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true, nil
}

func (it *sliceRowIter) Close() error { return nil }

// drainRows consumes src to completion, used by the operators explicitly
// allowed to materialize (Order, Aggregate, and the join build side).
func drainRows(ctx context.Context, src RowIter) ([]*evaluate.RowContext, error) {
	defer src.Close()
	var rows []*evaluate.RowContext
	for {
		row, ok, err := src.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}
