package evaluate

import (
	"math"
	"strings"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/value"
)

// evalFunctionCall dispatches the builtin scalar function set
// names as the minimum surface: string, numeric, null-handling, and misc
// functions. Null propagates except for the explicit null-handling
// functions (IFNULL, COALESCE)
func (ev *Evaluator) evalFunctionCall(n *ast.FunctionCallExpr) (value.Value, error) {
	name := strings.ToUpper(n.Name)

	if name == "COALESCE" {
		return ev.evalCoalesce(n.Args)
	}
	if name == "IFNULL" {
		return ev.evalIfNull(n.Args)
	}
	if name == "GENERATE_UUID" {
		return value.GenerateUUID(), nil
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	for _, a := range args {
		if a.IsNull() {
			return value.NewNull(), nil
		}
	}

	switch name {
	case "UPPER":
		return stringFn1(args, strings.ToUpper)
	case "LOWER":
		return stringFn1(args, strings.ToLower)
	case "INITCAP":
		return stringFn1(args, strings.Title) //nolint:staticcheck // simple title-casing matches the SQL builtin's intent
	case "LTRIM":
		return trimFn(args, strings.TrimLeft)
	case "RTRIM":
		return trimFn(args, strings.TrimRight)
	case "TRIM":
		return trimFn(args, strings.Trim)
	case "SUBSTR", "SUBSTRING":
		return substrFn(args)
	case "LEFT":
		return sideFn(args, true)
	case "RIGHT":
		return sideFn(args, false)
	case "LPAD":
		return padFn(args, true)
	case "RPAD":
		return padFn(args, false)
	case "REPEAT":
		return repeatFn(args)
	case "REVERSE":
		return stringFn1(args, reverseString)
	case "CONCAT":
		return concatFn(args)
	case "ABS", "CEIL", "FLOOR", "ROUND", "SIGN", "SQRT", "EXP", "LN", "LOG2", "LOG10", "SIN", "COS", "TAN", "ASIN", "ACOS", "ATAN", "RADIANS", "DEGREES":
		return unaryMathFn(name, args)
	case "POWER":
		return binaryMathFn(args, math.Pow)
	case "LOG":
		return binaryMathFn(args, func(x, base float64) float64 { return math.Log(x) / math.Log(base) })
	case "MOD":
		return modFn(args)
	case "DIV":
		return divFn(args)
	case "GCD":
		return gcdFn(args)
	case "LCM":
		return lcmFn(args)
	case "PI":
		return value.NewF64(math.Pi), nil
	case "UNHEX":
		return unhexFn(args)
	default:
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported function: %s", n.Name)
	}
}

func (ev *Evaluator) evalCoalesce(args []ast.Expr) (value.Value, error) {
	for _, a := range args {
		v, err := ev.Eval(a)
		if err != nil {
			return value.Value{}, err
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	return value.NewNull(), nil
}

func (ev *Evaluator) evalIfNull(args []ast.Expr) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "IFNULL requires exactly two arguments")
	}
	v, err := ev.Eval(args[0])
	if err != nil {
		return value.Value{}, err
	}
	if !v.IsNull() {
		return v, nil
	}
	return ev.Eval(args[1])
}
