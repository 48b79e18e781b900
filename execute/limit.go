package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/value"
)

// limitOffsetIter is the Limit/Offset operator: it streams,
// skipping offset rows and stopping after limit, never materializing.
func (ex *Executor) limitOffsetIter(ctx context.Context, src RowIter, limitExpr, offsetExpr ast.Expr) (RowIter, error) {
	if limitExpr == nil && offsetExpr == nil {
		return src, nil
	}
	offset, err := ex.evalNonNegInt(ctx, offsetExpr, 0)
	if err != nil {
		return nil, err
	}
	limit, hasLimit, err := ex.evalOptionalInt(ctx, limitExpr)
	if err != nil {
		return nil, err
	}

	skipped := 0
	emitted := 0
	return &funcRowIter{
		next: func(ctx context.Context) (*evaluate.RowContext, bool, error) {
			if hasLimit && emitted >= limit {
				return nil, false, nil
			}
			for skipped < offset {
				_, ok, err := src.Next(ctx)
				if err != nil || !ok {
					return nil, ok, err
				}
				skipped++
			}
			row, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return nil, ok, err
			}
			emitted++
			return row, true, nil
		},
		close: src.Close,
	}, nil
}

func (ex *Executor) evalNonNegInt(ctx context.Context, e ast.Expr, def int) (int, error) {
	if e == nil {
		return def, nil
	}
	v, err := ex.evalValue(ctx, e, nil)
	if err != nil {
		return 0, err
	}
	n, ok := asInt(v)
	if !ok || n < 0 {
		return 0, gerrors.NewExecuteError(gerrors.TooManyValues, "LIMIT/OFFSET must be a non-negative integer")
	}
	return n, nil
}

func (ex *Executor) evalOptionalInt(ctx context.Context, e ast.Expr) (int, bool, error) {
	if e == nil {
		return 0, false, nil
	}
	n, err := ex.evalNonNegInt(ctx, e, 0)
	return n, true, err
}

func asInt(v value.Value) (int, bool) {
	i, ok := value.Cast(v, value.TInt64)
	if !ok {
		return 0, false
	}
	return int(i.I64), true
}
