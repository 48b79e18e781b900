package evaluate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

func lit(v value.Value) ast.Expr { return &ast.Literal{Value: v} }

func newEvaluator() *Evaluator {
	return &Evaluator{Ctx: context.Background(), Row: &RowContext{}}
}

func TestEvalArithmetic(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(&ast.BinaryOpExpr{Op: ast.OpPlus, Left: lit(value.NewI64(2)), Right: lit(value.NewI64(3))})
	require.NoError(t, err)
	assert.Equal(t, value.NewI64(5), got)
}

func TestEvalComparison(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(&ast.BinaryOpExpr{Op: ast.OpLt, Left: lit(value.NewI64(2)), Right: lit(value.NewI64(3))})
	require.NoError(t, err)
	assert.True(t, got.IsTruthy())
}

func TestEvalAndShortCircuitsOnFalse(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(&ast.BinaryOpExpr{
		Op:    ast.OpAnd,
		Left:  lit(value.NewBool(false)),
		Right: &ast.Identifier{Name: "unresolved"},
	})
	require.NoError(t, err)
	assert.False(t, got.IsTruthy())
}

func TestEvalIsNull(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(&ast.IsNullExpr{Operand: lit(value.NewNull())})
	require.NoError(t, err)
	assert.True(t, got.IsTruthy())
}

func TestEvalCompoundIdentifierResolvesFromRowContext(t *testing.T) {
	ev := &Evaluator{
		Ctx: context.Background(),
		Row: &RowContext{
			Tables: map[string]TableRow{
				"t": {
					Columns: []string{"id", "name"},
					Row:     store.NewVecRow([]value.Value{value.NewI64(1), value.NewStr("alice")}),
				},
			},
		},
	}
	got, err := ev.Eval(&ast.CompoundIdentifier{Table: "t", Column: "name"})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.String())
}

func TestEvalCompoundIdentifierMissingColumnErrors(t *testing.T) {
	ev := newEvaluator()
	_, err := ev.Eval(&ast.CompoundIdentifier{Table: "t", Column: "missing"})
	assert.Error(t, err)
}

func TestEvalAggregateOutsideGroupByErrors(t *testing.T) {
	ev := newEvaluator()
	_, err := ev.Eval(&ast.Aggregate{Kind: ast.AggCount})
	assert.Error(t, err)
}

func TestEvalAggregateResolvesByIdentity(t *testing.T) {
	agg := &ast.Aggregate{Kind: ast.AggSum}
	ev := &Evaluator{
		Ctx: context.Background(),
		Row: &RowContext{Aggregates: map[*ast.Aggregate]value.Value{agg: value.NewI64(42)}},
	}
	got, err := ev.Eval(agg)
	require.NoError(t, err)
	assert.Equal(t, value.NewI64(42), got)
}

func TestEvalBetween(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(&ast.BetweenExpr{
		Operand: lit(value.NewI64(5)),
		Low:     lit(value.NewI64(1)),
		High:    lit(value.NewI64(10)),
	})
	require.NoError(t, err)
	assert.True(t, got.IsTruthy())
}

func TestEvalInList(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(&ast.InListExpr{
		Operand: lit(value.NewI64(2)),
		List:    []ast.Expr{lit(value.NewI64(1)), lit(value.NewI64(2)), lit(value.NewI64(3))},
	})
	require.NoError(t, err)
	assert.True(t, got.IsTruthy())
}
