package execute

import (
	"context"
	"sort"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/value"
)

// orderIter is the Order operator. Sorting inherently needs
// every row before it can emit the first one, so it materializes its
// source — one of the two operators the design explicitly allows to do so.
func (ex *Executor) orderIter(ctx context.Context, src RowIter, orderBy []ast.OrderByExpr) (RowIter, error) {
	if len(orderBy) == 0 {
		return src, nil
	}
	rows, err := drainRows(ctx, src)
	if err != nil {
		return nil, err
	}

	keys := make([][]value.Value, len(rows))
	for i, row := range rows {
		key := make([]value.Value, len(orderBy))
		for j, ob := range orderBy {
			v, err := ex.evalValue(ctx, ob.Expr, row)
			if err != nil {
				return nil, err
			}
			key[j] = v
		}
		keys[i] = key
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		for j, ob := range orderBy {
			ord, ok := value.Compare(keys[ia][j], keys[ib][j])
			if !ok || ord == value.EqualOrder {
				continue
			}
			if ob.Asc {
				return ord == value.Less
			}
			return ord == value.Greater
		}
		return false
	})

	sorted := make([]*evaluate.RowContext, len(rows))
	for i, p := range idx {
		sorted[i] = rows[p]
	}
	return newSliceRowIter(sorted), nil
}
