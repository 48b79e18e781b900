package plan

import (
	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/value"
)

// fold collapses literal-only subtrees at plan time so evaluate never
// repeats the same constant arithmetic per row. Anything involving a
// column reference, a subquery, or an
// operator fold can't reduce is returned unchanged.
func fold(e ast.Expr) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch n := e.(type) {
	case *ast.BinaryOpExpr:
		left, err := fold(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := fold(n.Right)
		if err != nil {
			return nil, err
		}
		n.Left, n.Right = left, right
		return foldBinary(n)
	case *ast.UnaryOpExpr:
		operand, err := fold(n.Operand)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		return foldUnary(n)
	case *ast.NestedExpr:
		inner, err := fold(n.Inner)
		if err != nil {
			return nil, err
		}
		if lit, ok := inner.(*ast.Literal); ok {
			return lit, nil
		}
		n.Inner = inner
		return n, nil
	case *ast.CaseExpr:
		for i := range n.WhenThen {
			w, err := fold(n.WhenThen[i].When)
			if err != nil {
				return nil, err
			}
			t, err := fold(n.WhenThen[i].Then)
			if err != nil {
				return nil, err
			}
			n.WhenThen[i].When, n.WhenThen[i].Then = w, t
		}
		if n.ElseResult != nil {
			r, err := fold(n.ElseResult)
			if err != nil {
				return nil, err
			}
			n.ElseResult = r
		}
		return n, nil
	case *ast.FunctionCallExpr:
		for i, a := range n.Args {
			folded, err := fold(a)
			if err != nil {
				return nil, err
			}
			n.Args[i] = folded
		}
		return n, nil
	default:
		return e, nil
	}
}

func foldBinary(n *ast.BinaryOpExpr) (ast.Expr, error) {
	left, lok := n.Left.(*ast.Literal)
	right, rok := n.Right.(*ast.Literal)
	if !lok || !rok {
		return foldShortCircuit(n), nil
	}
	if op, ok := arithValueOp(n.Op); ok {
		if left.Value.IsNull() || right.Value.IsNull() {
			return &ast.Literal{Value: value.NewNull()}, nil
		}
		result, err := value.Arith(op, left.Value, right.Value)
		if err != nil {
			return n, nil // leave for evaluate to raise the same error against the real row
		}
		return &ast.Literal{Value: result}, nil
	}
	if op, ok := compareOp(n.Op); ok {
		if left.Value.IsNull() || right.Value.IsNull() {
			return &ast.Literal{Value: value.NewNull()}, nil
		}
		ord, ok := value.Compare(left.Value, right.Value)
		if !ok {
			return n, nil
		}
		return &ast.Literal{Value: value.NewBool(applyOrdering(op, ord))}, nil
	}
	return n, nil
}

// foldShortCircuit reduces `FALSE AND x` / `TRUE OR x` (and their mirror
// forms) without requiring the other operand to also be constant.
func foldShortCircuit(n *ast.BinaryOpExpr) ast.Expr {
	switch n.Op {
	case ast.OpAnd:
		if isBoolLiteral(n.Left, false) || isBoolLiteral(n.Right, false) {
			return &ast.Literal{Value: value.NewBool(false)}
		}
	case ast.OpOr:
		if isBoolLiteral(n.Left, true) || isBoolLiteral(n.Right, true) {
			return &ast.Literal{Value: value.NewBool(true)}
		}
	}
	return n
}

func isBoolLiteral(e ast.Expr, want bool) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Value.Kind == value.Bool && lit.Value.Bool == want
}

func foldUnary(n *ast.UnaryOpExpr) (ast.Expr, error) {
	lit, ok := n.Operand.(*ast.Literal)
	if !ok {
		return n, nil
	}
	switch n.Op {
	case ast.OpNot:
		if lit.Value.Kind != value.Bool {
			return n, nil
		}
		return &ast.Literal{Value: value.NewBool(!lit.Value.Bool)}, nil
	case ast.OpNegate:
		if !lit.Value.Kind.IsNumeric() {
			return n, nil
		}
		zero := value.NewI64(0)
		result, err := value.Arith(value.OpSubtract, zero, lit.Value)
		if err != nil {
			return n, nil
		}
		return &ast.Literal{Value: result}, nil
	default:
		return n, nil
	}
}

func arithValueOp(op ast.BinOp) (value.BinaryOp, bool) {
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

func compareOp(op ast.BinOp) (ast.BinOp, bool) {
	switch op {
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return op, true
	default:
		return 0, false
	}
}

func applyOrdering(op ast.BinOp, ord value.Ordering) bool {
	switch op {
	case ast.OpEq:
		return ord == value.EqualOrder
	case ast.OpNotEq:
		return ord != value.EqualOrder
	case ast.OpLt:
		return ord == value.Less
	case ast.OpLtEq:
		return ord != value.Greater
	case ast.OpGt:
		return ord == value.Greater
	case ast.OpGtEq:
		return ord != value.Less
	default:
		return false
	}
}
