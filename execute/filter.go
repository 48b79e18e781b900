package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/evaluate"
)

// filterIter is the Filter operator: it re-evaluates pred for
// every row the upstream iterator produces, including rows that arrived via
// an index-scan bound (openScan's bound is an approximation, never exact).
func (ex *Executor) filterIter(src RowIter, pred ast.Expr) RowIter {
	if pred == nil {
		return src
	}
	return &funcRowIter{
		next: func(ctx context.Context) (*evaluate.RowContext, bool, error) {
			for {
				row, ok, err := src.Next(ctx)
				if err != nil || !ok {
					return nil, ok, err
				}
				keep, err := ex.evalBool(ctx, pred, row)
				if err != nil {
					return nil, false, err
				}
				if keep {
					return row, true, nil
				}
			}
		},
		close: src.Close,
	}
}
