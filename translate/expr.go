package translate

import (
	"strconv"
	"strings"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/value"
)

// Expr lowers one vitess expression node into ast.Expr.
func Expr(e vitess.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *vitess.AndExpr:
		return binary(ast.OpAnd, n.Left, n.Right)
	case *vitess.OrExpr:
		return binary(ast.OpOr, n.Left, n.Right)
	case *vitess.NotExpr:
		inner, err := Expr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOpExpr{Op: ast.OpNot, Operand: inner}, nil
	case *vitess.ParenExpr:
		inner, err := Expr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.NestedExpr{Inner: inner}, nil
	case *vitess.ComparisonExpr:
		return comparison(n)
	case *vitess.RangeCond:
		return rangeCond(n)
	case *vitess.IsExpr:
		return isExpr(n)
	case *vitess.ExistsExpr:
		sub, err := subquery(n.Subquery)
		if err != nil {
			return nil, err
		}
		return &ast.ExistsExpr{Subquery: sub}, nil
	case *vitess.SQLVal:
		return literalFromSQLVal(n)
	case vitess.BoolVal:
		return &ast.Literal{Value: value.NewBool(bool(n))}, nil
	case *vitess.NullVal:
		return &ast.Literal{Value: value.NewNull()}, nil
	case *vitess.ColName:
		if n.Qualifier.Name.String() != "" {
			return &ast.CompoundIdentifier{Table: n.Qualifier.Name.String(), Column: n.Name.String()}, nil
		}
		return &ast.Identifier{Name: n.Name.String()}, nil
	case *vitess.FuncExpr:
		return funcExpr(n)
	case vitess.ValTuple:
		elems := make([]ast.Expr, len(n))
		for i, item := range n {
			lowered, err := Expr(item)
			if err != nil {
				return nil, err
			}
			elems[i] = lowered
		}
		return &ast.ArrayExpr{Elements: elems}, nil
	case *vitess.Subquery:
		sub, err := subquery(n)
		if err != nil {
			return nil, err
		}
		return &ast.SubqueryExpr{Subquery: sub}, nil
	case *vitess.BinaryExpr:
		return binaryArith(n)
	case *vitess.UnaryExpr:
		return unaryArith(n)
	case *vitess.CaseExpr:
		return caseExpr(n)
	case *vitess.ConvertExpr:
		return convertExpr(n)
	case *vitess.IntervalExpr:
		return intervalExpr(n)
	default:
		return nil, unsupportedExpr("unsupported expression: %T", e)
	}
}

func binary(op ast.BinOp, l, r vitess.Expr) (ast.Expr, error) {
	left, err := Expr(l)
	if err != nil {
		return nil, err
	}
	right, err := Expr(r)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOpExpr{Op: op, Left: left, Right: right}, nil
}

func comparison(n *vitess.ComparisonExpr) (ast.Expr, error) {
	switch n.Operator {
	case "in", "not in":
		return inExpr(n)
	case "like", "not like":
		return likeExpr(n, false)
	case "ilike", "not ilike":
		return likeExpr(n, true)
	}
	op, ok := comparisonOp(n.Operator)
	if !ok {
		return nil, unsupportedExpr("unsupported comparison operator: %s", n.Operator)
	}
	return binary(op, n.Left, n.Right)
}

func comparisonOp(op string) (ast.BinOp, bool) {
	switch op {
	case "=":
		return ast.OpEq, true
	case "<>", "!=":
		return ast.OpNotEq, true
	case "<":
		return ast.OpLt, true
	case "<=":
		return ast.OpLtEq, true
	case ">":
		return ast.OpGt, true
	case ">=":
		return ast.OpGtEq, true
	default:
		return 0, false
	}
}

// inExpr lowers `x IN (a, b,...)` / `x IN (subquery)` / their NOT forms,
// keeping the dedicated AST nodes rather than rewriting to a disjunction of
// equalities so the planner can still reason about them.
func inExpr(n *vitess.ComparisonExpr) (ast.Expr, error) {
	negated := n.Operator == "not in"
	operand, err := Expr(n.Left)
	if err != nil {
		return nil, err
	}
	switch rhs := n.Right.(type) {
	case vitess.ValTuple:
		list := make([]ast.Expr, len(rhs))
		for i, item := range rhs {
			lowered, err := Expr(item)
			if err != nil {
				return nil, err
			}
			list[i] = lowered
		}
		return &ast.InListExpr{Operand: operand, Negated: negated, List: list}, nil
	case *vitess.Subquery:
		sub, err := subquery(rhs)
		if err != nil {
			return nil, err
		}
		return &ast.InSubqueryExpr{Operand: operand, Negated: negated, Subquery: sub}, nil
	default:
		return nil, unsupportedExpr("unsupported IN right-hand side: %T", n.Right)
	}
}

func likeExpr(n *vitess.ComparisonExpr, caseInsensitive bool) (ast.Expr, error) {
	negated := strings.HasPrefix(n.Operator, "not")
	op := ast.OpLike
	if caseInsensitive {
		op = ast.OpILike
	}
	if negated {
		if caseInsensitive {
			op = ast.OpNotILike
		} else {
			op = ast.OpNotLike
		}
	}
	return binary(op, n.Left, n.Right)
}

func rangeCond(n *vitess.RangeCond) (ast.Expr, error) {
	operand, err := Expr(n.Left)
	if err != nil {
		return nil, err
	}
	low, err := Expr(n.From)
	if err != nil {
		return nil, err
	}
	high, err := Expr(n.To)
	if err != nil {
		return nil, err
	}
	return &ast.BetweenExpr{Operand: operand, Negated: n.Operator == "not between", Low: low, High: high}, nil
}

func isExpr(n *vitess.IsExpr) (ast.Expr, error) {
	operand, err := Expr(n.Expr)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "is null":
		return &ast.IsNullExpr{Operand: operand, Negated: false}, nil
	case "is not null":
		return &ast.IsNullExpr{Operand: operand, Negated: true}, nil
	default:
		return nil, unsupportedExpr("unsupported IS operator: %s", n.Operator)
	}
}

func literalFromSQLVal(n *vitess.SQLVal) (ast.Expr, error) {
	switch n.Type {
	case vitess.StrVal:
		return &ast.Literal{Value: value.NewStr(string(n.Val))}, nil
	case vitess.IntVal:
		i, err := strconv.ParseInt(string(n.Val), 10, 64)
		if err != nil {
			return nil, unsupportedExpr("invalid integer literal: %s", n.Val)
		}
		return &ast.Literal{Value: value.NewI64(i)}, nil
	case vitess.FloatVal:
		f, err := strconv.ParseFloat(string(n.Val), 64)
		if err != nil {
			return nil, unsupportedExpr("invalid float literal: %s", n.Val)
		}
		return &ast.Literal{Value: value.NewF64(f)}, nil
	case vitess.HexVal, vitess.HexNum:
		return &ast.Literal{Value: value.Value{Kind: value.Bytea, Bytea: []byte(n.Val)}}, nil
	default:
		return nil, unsupportedExpr("unsupported literal type: %v", n.Type)
	}
}

func subquery(n *vitess.Subquery) (*ast.Query, error) {
	sel, ok := n.Select.(*vitess.Select)
	if !ok {
		return nil, unsupportedExpr("unsupported subquery body: %T", n.Select)
	}
	return query(sel)
}

func funcExpr(n *vitess.FuncExpr) (ast.Expr, error) {
	name := strings.ToUpper(n.Name.String())
	if aggKind, ok := aggregateKind(name); ok {
		return aggregateExpr(aggKind, n)
	}
	args := make([]ast.Expr, 0, len(n.Exprs))
	for _, item := range n.Exprs {
		switch se := item.(type) {
		case *vitess.AliasedExpr:
			lowered, err := Expr(se.Expr)
			if err != nil {
				return nil, err
			}
			args = append(args, lowered)
		case *vitess.StarExpr:
			// only legal inside COUNT(*), handled in aggregateExpr
			continue
		default:
			return nil, unsupportedExpr("unsupported function argument: %T", item)
		}
	}
	return &ast.FunctionCallExpr{Name: name, Args: args, Distinct: n.Distinct}, nil
}

func aggregateKind(name string) (ast.AggregateKind, bool) {
	switch name {
	case "COUNT":
		return ast.AggCount, true
	case "SUM":
		return ast.AggSum, true
	case "MIN":
		return ast.AggMin, true
	case "MAX":
		return ast.AggMax, true
	case "AVG":
		return ast.AggAvg, true
	case "VARIANCE":
		return ast.AggVariance, true
	case "STDEV":
		return ast.AggStdev, true
	default:
		return 0, false
	}
}

func aggregateExpr(kind ast.AggregateKind, n *vitess.FuncExpr) (ast.Expr, error) {
	if len(n.Exprs) == 0 {
		return nil, gerrors.NewTranslateError(gerrors.FunctionArgsLengthNotMatching, "%s requires one argument", n.Name.String())
	}
	if _, ok := n.Exprs[0].(*vitess.StarExpr); ok {
		if kind != ast.AggCount {
			return nil, unsupportedExpr("%s(*) is not supported", n.Name.String())
		}
		return &ast.Aggregate{Kind: kind, Arg: nil, Distinct: n.Distinct}, nil
	}
	aliased, ok := n.Exprs[0].(*vitess.AliasedExpr)
	if !ok {
		return nil, unsupportedExpr("unsupported aggregate argument: %T", n.Exprs[0])
	}
	arg, err := Expr(aliased.Expr)
	if err != nil {
		return nil, err
	}
	return &ast.Aggregate{Kind: kind, Arg: arg, Distinct: n.Distinct}, nil
}

func binaryArith(n *vitess.BinaryExpr) (ast.Expr, error) {
	op, ok := arithOp(n.Operator)
	if !ok {
		return nil, unsupportedExpr("unsupported binary operator: %s", n.Operator)
	}
	return binary(op, n.Left, n.Right)
}

func arithOp(op string) (ast.BinOp, bool) {
	switch op {
	case "+":
		return ast.OpPlus, true
	case "-":
		return ast.OpMinus, true
	case "*":
		return ast.OpMultiply, true
	case "/":
		return ast.OpDivide, true
	case "%":
		return ast.OpModulo, true
	case "&":
		return ast.OpBitwiseAnd, true
	case "|":
		return ast.OpBitwiseOr, true
	case "^":
		return ast.OpBitwiseXor, true
	case "||":
		return ast.OpConcat, true
	default:
		return 0, false
	}
}

func unaryArith(n *vitess.UnaryExpr) (ast.Expr, error) {
	operand, err := Expr(n.Expr)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "-":
		return &ast.UnaryOpExpr{Op: ast.OpNegate, Operand: operand}, nil
	case "+":
		return operand, nil
	case "~":
		return &ast.UnaryOpExpr{Op: ast.OpBitwiseNot, Operand: operand}, nil
	case "!":
		return &ast.UnaryOpExpr{Op: ast.OpNot, Operand: operand}, nil
	default:
		return nil, unsupportedExpr("unsupported unary operator: %s", n.Operator)
	}
}

func caseExpr(n *vitess.CaseExpr) (ast.Expr, error) {
	var operand ast.Expr
	if n.Expr != nil {
		lowered, err := Expr(n.Expr)
		if err != nil {
			return nil, err
		}
		operand = lowered
	}
	whens := make([]ast.WhenThen, len(n.Whens))
	for i, w := range n.Whens {
		cond, err := Expr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := Expr(w.Val)
		if err != nil {
			return nil, err
		}
		whens[i] = ast.WhenThen{When: cond, Then: then}
	}
	var elseResult ast.Expr
	if n.Else != nil {
		lowered, err := Expr(n.Else)
		if err != nil {
			return nil, err
		}
		elseResult = lowered
	}
	return &ast.CaseExpr{Operand: operand, WhenThen: whens, ElseResult: elseResult}, nil
}

func convertExpr(n *vitess.ConvertExpr) (ast.Expr, error) {
	operand, err := Expr(n.Expr)
	if err != nil {
		return nil, err
	}
	target, ok := schema.ParseTypeName(strings.ToUpper(n.Type.Type))
	if !ok {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedDataType, "unsupported CAST target type: %s", n.Type.Type)
	}
	return &ast.CastExpr{Operand: operand, Target: target}, nil
}

func intervalExpr(n *vitess.IntervalExpr) (ast.Expr, error) {
	inner, err := Expr(n.Expr)
	if err != nil {
		return nil, err
	}
	unit, ok := intervalUnit(strings.ToUpper(n.Unit))
	if !ok {
		return nil, unsupportedExpr("unsupported interval unit: %s", n.Unit)
	}
	return &ast.IntervalExpr{Value: inner, Unit: unit}, nil
}

func intervalUnit(u string) (ast.IntervalUnit, bool) {
	switch u {
	case "YEAR":
		return ast.IntervalYear, true
	case "MONTH":
		return ast.IntervalMonth, true
	case "DAY":
		return ast.IntervalDay, true
	case "HOUR":
		return ast.IntervalHour, true
	case "MINUTE":
		return ast.IntervalMinute, true
	case "SECOND":
		return ast.IntervalSecond, true
	default:
		return 0, false
	}
}
