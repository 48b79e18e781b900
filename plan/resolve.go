package plan

import (
	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
)

// scope is the cactus-stack of table aliases visible to an expression
// : one frame per query level, chained to Outer for correlated
// subquery resolution.
type scope struct {
	tables []tableBinding
	cat    *Catalog
	Outer  *scope
}

type tableBinding struct {
	alias   string
	columns []string // nil for a derived table whose shape isn't statically known
}

func buildScope(from *ast.TableWithJoins, cat *Catalog, outer *scope) (*scope, error) {
	sc := &scope{Outer: outer, cat: cat}
	binding, err := bindingFor(from.Relation, cat)
	if err != nil {
		return nil, err
	}
	sc.tables = append(sc.tables, binding)
	for _, j := range from.Joins {
		b, err := bindingFor(j.Relation, cat)
		if err != nil {
			return nil, err
		}
		sc.tables = append(sc.tables, b)
	}
	return sc, nil
}

func bindingFor(t ast.TableFactor, cat *Catalog) (tableBinding, error) {
	alias := t.Alias
	if t.Subquery != nil {
		if alias == "" {
			alias = "_derived"
		}
		return tableBinding{alias: alias}, nil
	}
	s, ok := cat.Lookup(t.TableName)
	if !ok {
		return tableBinding{}, gerrors.NewPlanError(gerrors.TableNotFound, "table not found: %s", t.TableName)
	}
	if alias == "" {
		alias = t.TableName
	}
	var cols []string
	if !s.IsSchemaless() {
		cols = s.ColumnNames()
	}
	return tableBinding{alias: alias, columns: cols}, nil
}

func (sc *scope) find(column string) (string, int) {
	matchAlias, matches := "", 0
	for _, t := range sc.tables {
		if t.columns == nil {
			// schemaless table: always a plausible match, resolved at
			// evaluate time against the actual row shape.
			matchAlias, matches = t.alias, matches+1
			continue
		}
		for _, c := range t.columns {
			if c == column {
				matchAlias, matches = t.alias, matches+1
				break
			}
		}
	}
	return matchAlias, matches
}

// resolveExpr rewrites bare ast.Identifier nodes into ast.CompoundIdentifier
// once the owning table is unambiguous in scope, and recurses into every
// subquery with this scope as its Outer.
func resolveExpr(e ast.Expr, sc *scope) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch n := e.(type) {
	case *ast.Identifier:
		alias, matches := sc.find(n.Name)
		if matches == 0 {
			if sc.Outer != nil {
				return resolveExpr(e, sc.Outer)
			}
			return nil, gerrors.NewPlanError(gerrors.ColumnNotFound, "column not found: %s", n.Name)
		}
		if matches > 1 {
			return nil, gerrors.NewPlanError(gerrors.AmbiguousColumn, "ambiguous column reference: %s", n.Name)
		}
		return &ast.CompoundIdentifier{Table: alias, Column: n.Name}, nil
	case *ast.BinaryOpExpr:
		l, err := resolveExpr(n.Left, sc)
		if err != nil {
			return nil, err
		}
		r, err := resolveExpr(n.Right, sc)
		if err != nil {
			return nil, err
		}
		n.Left, n.Right = l, r
		return n, nil
	case *ast.UnaryOpExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		return n, nil
	case *ast.IsNullExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		return n, nil
	case *ast.BetweenExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		low, err := resolveExpr(n.Low, sc)
		if err != nil {
			return nil, err
		}
		high, err := resolveExpr(n.High, sc)
		if err != nil {
			return nil, err
		}
		n.Operand, n.Low, n.High = operand, low, high
		return n, nil
	case *ast.InListExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		for i, item := range n.List {
			resolved, err := resolveExpr(item, sc)
			if err != nil {
				return nil, err
			}
			n.List[i] = resolved
		}
		return n, nil
	case *ast.InSubqueryExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		planned, err := query(n.Subquery, sc.cat, sc)
		if err != nil {
			return nil, err
		}
		n.Subquery = planned
		n.Correlated = correlatedRefs(n.Subquery, sc)
		return n, nil
	case *ast.ExistsExpr:
		planned, err := query(n.Subquery, sc.cat, sc)
		if err != nil {
			return nil, err
		}
		n.Subquery = planned
		n.Correlated = correlatedRefs(n.Subquery, sc)
		return n, nil
	case *ast.SubqueryExpr:
		planned, err := query(n.Subquery, sc.cat, sc)
		if err != nil {
			return nil, err
		}
		n.Subquery = planned
		n.Correlated = correlatedRefs(n.Subquery, sc)
		return n, nil
	case *ast.CaseExpr:
		if n.Operand != nil {
			resolved, err := resolveExpr(n.Operand, sc)
			if err != nil {
				return nil, err
			}
			n.Operand = resolved
		}
		for i := range n.WhenThen {
			w, err := resolveExpr(n.WhenThen[i].When, sc)
			if err != nil {
				return nil, err
			}
			t, err := resolveExpr(n.WhenThen[i].Then, sc)
			if err != nil {
				return nil, err
			}
			n.WhenThen[i].When, n.WhenThen[i].Then = w, t
		}
		if n.ElseResult != nil {
			resolved, err := resolveExpr(n.ElseResult, sc)
			if err != nil {
				return nil, err
			}
			n.ElseResult = resolved
		}
		return n, nil
	case *ast.CastExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		return n, nil
	case *ast.FunctionCallExpr:
		for i, a := range n.Args {
			resolved, err := resolveExpr(a, sc)
			if err != nil {
				return nil, err
			}
			n.Args[i] = resolved
		}
		return n, nil
	case *ast.Aggregate:
		if n.Arg != nil {
			resolved, err := resolveExpr(n.Arg, sc)
			if err != nil {
				return nil, err
			}
			n.Arg = resolved
		}
		return n, nil
	case *ast.NestedExpr:
		inner, err := resolveExpr(n.Inner, sc)
		if err != nil {
			return nil, err
		}
		n.Inner = inner
		return n, nil
	case *ast.ArrayExpr:
		for i, item := range n.Elements {
			resolved, err := resolveExpr(item, sc)
			if err != nil {
				return nil, err
			}
			n.Elements[i] = resolved
		}
		return n, nil
	case *ast.ArrayIndexExpr:
		operand, err := resolveExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		index, err := resolveExpr(n.Index, sc)
		if err != nil {
			return nil, err
		}
		n.Operand, n.Index = operand, index
		return n, nil
	case *ast.IntervalExpr:
		value, err := resolveExpr(n.Value, sc)
		if err != nil {
			return nil, err
		}
		n.Value = value
		return n, nil
	default:
		// Literal, CompoundIdentifier (already resolved by translate),
		// TypedStringExpr: nothing to resolve.
		return e, nil
	}
}

// correlatedRefs finds every CompoundIdentifier in q's WHERE clause whose
// table alias isn't bound by q's own FROM, tagging the subquery as
// correlated; the projection, GROUP BY and HAVING are not searched.
func correlatedRefs(q *ast.Query, outer *scope) []ast.CompoundIdentifier {
	sel, ok := q.Body.(ast.SelectSetExpr)
	if !ok {
		return nil
	}
	own := map[string]bool{}
	collectAliases(sel.Select.From, own)

	var refs []ast.CompoundIdentifier
	ast.Walk(sel.Select.Selection, func(n ast.Expr) bool {
		if ci, ok := n.(*ast.CompoundIdentifier); ok && !own[ci.Table] {
			refs = append(refs, *ci)
		}
		return true
	})
	return refs
}

func collectAliases(from ast.TableWithJoins, into map[string]bool) {
	alias := from.Relation.Alias
	if alias == "" {
		alias = from.Relation.TableName
	}
	into[alias] = true
	for _, j := range from.Joins {
		a := j.Relation.Alias
		if a == "" {
			a = j.Relation.TableName
		}
		into[a] = true
	}
}
