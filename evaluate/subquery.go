package evaluate

import (
	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/value"
)

func (ev *Evaluator) evalInSubquery(n *ast.InSubqueryExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	rows, err := ev.Runner.RunSubquery(ev.Ctx, n.Subquery, ev.Row)
	if err != nil {
		return value.Value{}, err
	}
	if operand.IsNull() {
		return value.NewNull(), nil
	}
	sawNull := false
	for _, row := range rows {
		if len(row) != 1 {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.MoreThanOneRowReturned, "IN subquery must return exactly one column")
		}
		if row[0].IsNull() {
			sawNull = true
			continue
		}
		eq, ok := value.Equal(operand, row[0])
		if ok && eq {
			return value.NewBool(!n.Negated), nil
		}
	}
	if sawNull {
		return value.NewNull(), nil
	}
	return value.NewBool(n.Negated), nil
}

func (ev *Evaluator) evalExists(n *ast.ExistsExpr) (value.Value, error) {
	rows, err := ev.Runner.RunSubquery(ev.Ctx, n.Subquery, ev.Row)
	if err != nil {
		return value.Value{}, err
	}
	result := len(rows) > 0
	if n.Negated {
		result = !result
	}
	return value.NewBool(result), nil
}

func (ev *Evaluator) evalScalarSubquery(n *ast.SubqueryExpr) (value.Value, error) {
	rows, err := ev.Runner.RunSubquery(ev.Ctx, n.Subquery, ev.Row)
	if err != nil {
		return value.Value{}, err
	}
	if len(rows) == 0 {
		return value.NewNull(), nil
	}
	if len(rows) > 1 {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.MoreThanOneRowReturned, "scalar subquery returned more than one row")
	}
	if len(rows[0]) != 1 {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.MoreThanOneRowReturned, "scalar subquery must return exactly one column")
	}
	return rows[0][0], nil
}
