package ast

import (
	"fmt"
	"strings"
)

type canonicalBuilder struct {
	sb strings.Builder
}

func (b *canonicalBuilder) String() string { return b.sb.String() }

func (b *canonicalBuilder) write(e Expr) {
	switch n := e.(type) {
	case *Literal:
		b.sb.WriteString(n.Value.String())
	case *Identifier:
		b.sb.WriteString(n.Name)
	case *CompoundIdentifier:
		b.sb.WriteString(n.Table)
		b.sb.WriteString(".")
		b.sb.WriteString(n.Column)
	case *BinaryOpExpr:
		b.write(n.Left)
		b.sb.WriteString(" ")
		b.sb.WriteString(binOpText(n.Op))
		b.sb.WriteString(" ")
		b.write(n.Right)
	case *UnaryOpExpr:
		b.sb.WriteString(unOpText(n.Op))
		b.write(n.Operand)
	case *IsNullExpr:
		b.write(n.Operand)
		if n.Negated {
			b.sb.WriteString(" IS NOT NULL")
		} else {
			b.sb.WriteString(" IS NULL")
		}
	case *BetweenExpr:
		b.write(n.Operand)
		if n.Negated {
			b.sb.WriteString(" NOT BETWEEN ")
		} else {
			b.sb.WriteString(" BETWEEN ")
		}
		b.write(n.Low)
		b.sb.WriteString(" AND ")
		b.write(n.High)
	case *InListExpr:
		b.write(n.Operand)
		if n.Negated {
			b.sb.WriteString(" NOT IN (")
		} else {
			b.sb.WriteString(" IN (")
		}
		for i, item := range n.List {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			b.write(item)
		}
		b.sb.WriteString(")")
	case *InSubqueryExpr:
		b.write(n.Operand)
		if n.Negated {
			b.sb.WriteString(" NOT IN (<subquery>)")
		} else {
			b.sb.WriteString(" IN (<subquery>)")
		}
	case *ExistsExpr:
		if n.Negated {
			b.sb.WriteString("NOT ")
		}
		b.sb.WriteString("EXISTS (<subquery>)")
	case *SubqueryExpr:
		b.sb.WriteString("(<subquery>)")
	case *CaseExpr:
		b.sb.WriteString("CASE")
		if n.Operand != nil {
			b.sb.WriteString(" ")
			b.write(n.Operand)
		}
		for _, wt := range n.WhenThen {
			b.sb.WriteString(" WHEN ")
			b.write(wt.When)
			b.sb.WriteString(" THEN ")
			b.write(wt.Then)
		}
		if n.ElseResult != nil {
			b.sb.WriteString(" ELSE ")
			b.write(n.ElseResult)
		}
		b.sb.WriteString(" END")
	case *CastExpr:
		b.sb.WriteString("CAST(")
		b.write(n.Operand)
		b.sb.WriteString(" AS ")
		b.sb.WriteString(fmt.Sprintf("%d", n.Target))
		b.sb.WriteString(")")
	case *TypedStringExpr:
		b.sb.WriteString(n.Raw)
	case *FunctionCallExpr:
		b.sb.WriteString(n.Name)
		b.sb.WriteString("(")
		if n.Distinct {
			b.sb.WriteString("DISTINCT ")
		}
		for i, a := range n.Args {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			b.write(a)
		}
		b.sb.WriteString(")")
	case *Aggregate:
		b.sb.WriteString(aggName(n.Kind))
		b.sb.WriteString("(")
		if n.Distinct {
			b.sb.WriteString("DISTINCT ")
		}
		if n.Arg == nil {
			b.sb.WriteString("*")
		} else {
			b.write(n.Arg)
		}
		b.sb.WriteString(")")
	case *NestedExpr:
		b.sb.WriteString("(")
		b.write(n.Inner)
		b.sb.WriteString(")")
	case *ArrayExpr:
		b.sb.WriteString("[")
		for i, el := range n.Elements {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			b.write(el)
		}
		b.sb.WriteString("]")
	case *ArrayIndexExpr:
		b.write(n.Operand)
		b.sb.WriteString("[")
		b.write(n.Index)
		b.sb.WriteString("]")
	case *IntervalExpr:
		b.sb.WriteString("INTERVAL ")
		b.write(n.Value)
	default:
		b.sb.WriteString("?")
	}
}

func binOpText(op BinOp) string {
	switch op {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	case OpEq:
		return "="
	case OpNotEq:
		return "<>"
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpBitwiseAnd:
		return "&"
	case OpBitwiseOr:
		return "|"
	case OpBitwiseXor:
		return "^"
	case OpConcat:
		return "||"
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpILike:
		return "ILIKE"
	case OpNotILike:
		return "NOT ILIKE"
	default:
		return "?"
	}
}

func unOpText(op UnOp) string {
	switch op {
	case OpNot:
		return "NOT "
	case OpNegate:
		return "-"
	case OpBitwiseNot:
		return "~"
	default:
		return "?"
	}
}

func aggName(k AggregateKind) string {
	switch k {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggAvg:
		return "AVG"
	case AggVariance:
		return "VARIANCE"
	case AggStdev:
		return "STDEV"
	default:
		return "?"
	}
}

// Walk visits every Expr node reachable from e (not descending into
// subqueries' own FROM/selection since those are separate statements; it
// does visit a subquery's top-level Expr as an opaque node).
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch n := e.(type) {
	case *BinaryOpExpr:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *UnaryOpExpr:
		Walk(n.Operand, visit)
	case *IsNullExpr:
		Walk(n.Operand, visit)
	case *BetweenExpr:
		Walk(n.Operand, visit)
		Walk(n.Low, visit)
		Walk(n.High, visit)
	case *InListExpr:
		Walk(n.Operand, visit)
		for _, it := range n.List {
			Walk(it, visit)
		}
	case *InSubqueryExpr:
		Walk(n.Operand, visit)
	case *CaseExpr:
		if n.Operand != nil {
			Walk(n.Operand, visit)
		}
		for _, wt := range n.WhenThen {
			Walk(wt.When, visit)
			Walk(wt.Then, visit)
		}
		if n.ElseResult != nil {
			Walk(n.ElseResult, visit)
		}
	case *CastExpr:
		Walk(n.Operand, visit)
	case *FunctionCallExpr:
		for _, a := range n.Args {
			Walk(a, visit)
		}
	case *Aggregate:
		if n.Arg != nil {
			Walk(n.Arg, visit)
		}
	case *NestedExpr:
		Walk(n.Inner, visit)
	case *ArrayExpr:
		for _, el := range n.Elements {
			Walk(el, visit)
		}
	case *ArrayIndexExpr:
		Walk(n.Operand, visit)
		Walk(n.Index, visit)
	case *IntervalExpr:
		Walk(n.Value, visit)
	}
}

// IsStateless reports whether e contains no column references, aggregates,
// or subqueries (spec GLOSSARY "Stateless expression"); used to validate
// DEFAULT expressions and index expressions.
func IsStateless(e Expr) bool {
	stateless := true
	Walk(e, func(n Expr) bool {
		switch n.(type) {
		case *Identifier, *CompoundIdentifier, *Aggregate, *SubqueryExpr, *InSubqueryExpr, *ExistsExpr:
			stateless = false
			return false
		}
		return true
	})
	return stateless
}
