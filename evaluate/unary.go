package evaluate

import (
	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/value"
)

func (ev *Evaluator) evalUnary(n *ast.UnaryOpExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	if operand.IsNull() {
		return value.NewNull(), nil
	}
	switch n.Op {
	case ast.OpNot:
		if operand.Kind != value.Bool {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresBoolValue, "NOT requires a boolean operand")
		}
		return value.NewBool(!operand.Bool), nil
	case ast.OpNegate:
		if !operand.Kind.IsNumeric() {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "unary minus requires a numeric operand")
		}
		return value.Arith(value.OpSubtract, value.NewI64(0), operand)
	case ast.OpBitwiseNot:
		i, ok := asInt64(operand)
		if !ok {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "bitwise NOT requires an integer operand")
		}
		return value.NewI64(^i), nil
	default:
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported unary operator")
	}
}

func (ev *Evaluator) evalIsNull(n *ast.IsNullExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	result := operand.IsNull()
	if n.Negated {
		result = !result
	}
	return value.NewBool(result), nil
}

func (ev *Evaluator) evalBetween(n *ast.BetweenExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	low, err := ev.Eval(n.Low)
	if err != nil {
		return value.Value{}, err
	}
	high, err := ev.Eval(n.High)
	if err != nil {
		return value.Value{}, err
	}
	if operand.IsNull() || low.IsNull() || high.IsNull() {
		return value.NewNull(), nil
	}
	lowOrd, ok := value.Compare(operand, low)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "BETWEEN operands are not comparable")
	}
	highOrd, ok := value.Compare(operand, high)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "BETWEEN operands are not comparable")
	}
	result := lowOrd != value.Less && highOrd != value.Greater
	if n.Negated {
		result = !result
	}
	return value.NewBool(result), nil
}

func (ev *Evaluator) evalInList(n *ast.InListExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	if operand.IsNull() {
		return value.NewNull(), nil
	}
	sawNull := false
	for _, item := range n.List {
		v, err := ev.Eval(item)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsNull() {
			sawNull = true
			continue
		}
		eq, ok := value.Equal(operand, v)
		if ok && eq {
			return value.NewBool(!n.Negated), nil
		}
	}
	if sawNull {
		return value.NewNull(), nil
	}
	return value.NewBool(n.Negated), nil
}
