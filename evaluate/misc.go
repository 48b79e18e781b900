package evaluate

import (
	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/value"
)

// evalCase implements both simple (`CASE x WHEN ...`) and searched (`CASE
// WHEN ...`) forms, evaluating WHEN branches lazily left to right: Null
// propagation is per-branch, not across the whole expression.
func (ev *Evaluator) evalCase(n *ast.CaseExpr) (value.Value, error) {
	var operand value.Value
	if n.Operand != nil {
		v, err := ev.Eval(n.Operand)
		if err != nil {
			return value.Value{}, err
		}
		operand = v
	}
	for _, wt := range n.WhenThen {
		whenVal, err := ev.Eval(wt.When)
		if err != nil {
			return value.Value{}, err
		}
		var matched bool
		if n.Operand != nil {
			if operand.IsNull() || whenVal.IsNull() {
				matched = false
			} else {
				eq, ok := value.Equal(operand, whenVal)
				matched = ok && eq
			}
		} else {
			matched = whenVal.Kind == value.Bool && whenVal.Bool
		}
		if matched {
			return ev.Eval(wt.Then)
		}
	}
	if n.ElseResult != nil {
		return ev.Eval(n.ElseResult)
	}
	return value.NewNull(), nil
}

func (ev *Evaluator) evalCast(n *ast.CastExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	result, ok := value.Cast(operand, n.Target)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresStringValue, "cannot cast %s to the requested type", operand.String())
	}
	return result, nil
}

func (ev *Evaluator) evalTypedString(n *ast.TypedStringExpr) (value.Value, error) {
	result, ok := value.Cast(value.NewStr(n.Raw), n.Target)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresStringValue, "invalid typed string literal: %s", n.Raw)
	}
	return result, nil
}

func (ev *Evaluator) evalArray(n *ast.ArrayExpr) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, e := range n.Elements {
		v, err := ev.Eval(e)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
	}
	return value.NewList(elems), nil
}

func (ev *Evaluator) evalArrayIndex(n *ast.ArrayIndexExpr) (value.Value, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return value.Value{}, err
	}
	index, err := ev.Eval(n.Index)
	if err != nil {
		return value.Value{}, err
	}
	if operand.IsNull() || index.IsNull() {
		return value.NewNull(), nil
	}
	if operand.Kind != value.List {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "array index requires a LIST operand")
	}
	i, ok := asInt64(index)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "array index must be an integer")
	}
	pos := int(i) - 1 // SQL arrays are 1-indexed
	if pos < 0 || pos >= len(operand.ListV) {
		return value.NewNull(), nil
	}
	return operand.ListV[pos], nil
}

func (ev *Evaluator) evalInterval(n *ast.IntervalExpr) (value.Value, error) {
	v, err := ev.Eval(n.Value)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() {
		return value.NewNull(), nil
	}
	count, ok := asInt64(v)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "INTERVAL requires an integer magnitude")
	}
	iv := value.Interval{}
	switch n.Unit {
	case ast.IntervalYear:
		iv.Months = int32(count) * 12
	case ast.IntervalMonth:
		iv.Months = int32(count)
	case ast.IntervalDay:
		iv.Micros = count * 24 * 3600 * 1_000_000
	case ast.IntervalHour:
		iv.Micros = count * 3600 * 1_000_000
	case ast.IntervalMinute:
		iv.Micros = count * 60 * 1_000_000
	case ast.IntervalSecond:
		iv.Micros = count * 1_000_000
	}
	return value.Value{Kind: value.Interval, Intv: iv}, nil
}
