package evaluate

import (
	"strings"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/value"
)

func (ev *Evaluator) evalBinary(n *ast.BinaryOpExpr) (value.Value, error) {
	// AND/OR short-circuit on a determining operand before the other side
	// is even evaluated, including across a Null ( three-valued
	// logic: `FALSE AND NULL` is FALSE, not NULL).
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		return ev.evalLogical(n)
	}

	left, err := ev.Eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := ev.Eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}

	if left.IsNull() || right.IsNull() {
		return value.NewNull(), nil
	}

	switch n.Op {
	case ast.OpPlus, ast.OpMinus, ast.OpMultiply, ast.OpDivide, ast.OpModulo:
		op, _ := arithOp(n.Op)
		return value.Arith(op, left, right)
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return ev.evalComparison(n.Op, left, right)
	case ast.OpBitwiseAnd, ast.OpBitwiseOr, ast.OpBitwiseXor:
		return evalBitwise(n.Op, left, right)
	case ast.OpConcat:
		return value.NewStr(left.String() + right.String()), nil
	case ast.OpLike, ast.OpNotLike, ast.OpILike, ast.OpNotILike:
		return evalLike(n.Op, left, right)
	default:
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported binary operator")
	}
}

func (ev *Evaluator) evalLogical(n *ast.BinaryOpExpr) (value.Value, error) {
	left, err := ev.Eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	if n.Op == ast.OpAnd && left.Kind == value.Bool && !left.Bool {
		return value.NewBool(false), nil
	}
	if n.Op == ast.OpOr && left.Kind == value.Bool && left.Bool {
		return value.NewBool(true), nil
	}
	right, err := ev.Eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}
	if n.Op == ast.OpAnd && right.Kind == value.Bool && !right.Bool {
		return value.NewBool(false), nil
	}
	if n.Op == ast.OpOr && right.Kind == value.Bool && right.Bool {
		return value.NewBool(true), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.NewNull(), nil
	}
	if left.Kind != value.Bool || right.Kind != value.Bool {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresBoolValue, "AND/OR operand must be boolean")
	}
	if n.Op == ast.OpAnd {
		return value.NewBool(left.Bool && right.Bool), nil
	}
	return value.NewBool(left.Bool || right.Bool), nil
}

func (ev *Evaluator) evalComparison(op ast.BinOp, left, right value.Value) (value.Value, error) {
	if op == ast.OpEq || op == ast.OpNotEq {
		eq, ok := value.Equal(left, right)
		if !ok {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "values are not comparable")
		}
		if op == ast.OpNotEq {
			eq = !eq
		}
		return value.NewBool(eq), nil
	}
	ord, ok := value.Compare(left, right)
	if !ok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "values are not orderable")
	}
	switch op {
	case ast.OpLt:
		return value.NewBool(ord == value.Less), nil
	case ast.OpLtEq:
		return value.NewBool(ord != value.Greater), nil
	case ast.OpGt:
		return value.NewBool(ord == value.Greater), nil
	default: // OpGtEq
		return value.NewBool(ord != value.Less), nil
	}
}

func evalBitwise(op ast.BinOp, left, right value.Value) (value.Value, error) {
	l, lok := asInt64(left)
	r, rok := asInt64(right)
	if !lok || !rok {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "bitwise operator requires integer operands")
	}
	switch op {
	case ast.OpBitwiseAnd:
		return value.NewI64(l & r), nil
	case ast.OpBitwiseOr:
		return value.NewI64(l | r), nil
	default: // OpBitwiseXor
		return value.NewI64(l ^ r), nil
	}
}

func asInt64(v value.Value) (int64, bool) {
	switch v.Kind {
	case value.I8:
		return int64(v.I8), true
	case value.I16:
		return int64(v.I16), true
	case value.I32:
		return int64(v.I32), true
	case value.I64:
		return v.I64, true
	case value.U8:
		return int64(v.U8), true
	case value.U16:
		return int64(v.U16), true
	case value.U32:
		return int64(v.U32), true
	case value.U64:
		return int64(v.U64), true
	default:
		return 0, false
	}
}

func evalLike(op ast.BinOp, left, right value.Value) (value.Value, error) {
	if left.Kind != value.Str || right.Kind != value.Str {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresStringValue, "LIKE requires string operands")
	}
	caseInsensitive := op == ast.OpILike || op == ast.OpNotILike
	negated := op == ast.OpNotLike || op == ast.OpNotILike
	matched := likeMatch(left.Str, right.Str, caseInsensitive)
	if negated {
		matched = !matched
	}
	return value.NewBool(matched), nil
}

// likeMatch implements SQL LIKE's `%`/`_` wildcards directly rather than
// compiling to regexp, since `_` and `%` need literal-run comparison, not
// backtracking search.
func likeMatch(s, pattern string, caseInsensitive bool) bool {
	if caseInsensitive {
		s = strings.ToUpper(s)
		pattern = strings.ToUpper(pattern)
	}
	return likeRec([]rune(s), []rune(pattern))
}

func likeRec(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '%':
		if likeRec(s, p[1:]) {
			return true
		}
		for i := range s {
			if likeRec(s[i+1:], p[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeRec(s[1:], p[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return likeRec(s[1:], p[1:])
	}
}

func arithOp(op ast.BinOp) (value.BinaryOp, bool) {
	switch op {
	case ast.OpPlus:
		return value.OpAdd, true
	case ast.OpMinus:
		return value.OpSubtract, true
	case ast.OpMultiply:
		return value.OpMultiply, true
	case ast.OpDivide:
		return value.OpDivide, true
	case ast.OpModulo:
		return value.OpModulo, true
	default:
		return 0, false
	}
}
