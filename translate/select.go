package translate

import (
	"strings"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
)

// selectStatement lowers a vitess SELECT into ast.Select.
func selectStatement(n *vitess.Select) (*ast.Select, error) {
	if strings.EqualFold(n.Distinct, vitess.DistinctStr) {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "SELECT DISTINCT is not supported")
	}

	projection, err := selectItems(n.SelectExprs)
	if err != nil {
		return nil, err
	}

	from, err := tableWithJoins(n.From)
	if err != nil {
		return nil, err
	}

	sel := &ast.Select{
		Projection: projection,
		From:       from,
	}

	if n.Where != nil {
		cond, err := Expr(n.Where.Expr)
		if err != nil {
			return nil, err
		}
		sel.Selection = cond
	}

	if len(n.GroupBy) > 0 {
		group := make([]ast.Expr, len(n.GroupBy))
		for i, g := range n.GroupBy {
			lowered, err := Expr(g)
			if err != nil {
				return nil, err
			}
			group[i] = lowered
		}
		sel.GroupBy = group
	}

	if n.Having != nil {
		having, err := Expr(n.Having.Expr)
		if err != nil {
			return nil, err
		}
		sel.Having = having
	}

	return sel, nil
}

// query wraps selectStatement plus the ORDER BY/LIMIT/OFFSET clauses that
// live on vitess.Select but on ast.Query in this tree (: Query is
// the shared SELECT/VALUES envelope).
func query(n *vitess.Select) (*ast.Query, error) {
	sel, err := selectStatement(n)
	if err != nil {
		return nil, err
	}
	q := &ast.Query{Body: ast.SelectSetExpr{Select: *sel}}

	for _, o := range n.OrderBy {
		lowered, err := Expr(o.Expr)
		if err != nil {
			return nil, err
		}
		q.OrderBy = append(q.OrderBy, ast.OrderByExpr{Expr: lowered, Asc: o.Direction != vitess.DescScr})
	}

	if n.Limit != nil {
		if n.Limit.Rowcount != nil {
			lim, err := Expr(n.Limit.Rowcount)
			if err != nil {
				return nil, err
			}
			q.Limit = lim
		}
		if n.Limit.Offset != nil {
			off, err := Expr(n.Limit.Offset)
			if err != nil {
				return nil, err
			}
			q.Offset = off
		}
	}

	return q, nil
}

func selectItems(exprs vitess.SelectExprs) ([]ast.SelectItem, error) {
	items := make([]ast.SelectItem, 0, len(exprs))
	for _, e := range exprs {
		switch se := e.(type) {
		case *vitess.StarExpr:
			if se.TableName.Name.String() != "" {
				items = append(items, ast.QualifiedWildcard{TableAlias: se.TableName.Name.String()})
			} else {
				items = append(items, ast.WildcardItem{})
			}
		case *vitess.AliasedExpr:
			lowered, err := Expr(se.Expr)
			if err != nil {
				return nil, err
			}
			label := se.As.String()
			if label == "" {
				label = ast.CanonicalSQL(lowered)
			}
			items = append(items, ast.ExprItem{Expr: lowered, Label: label})
		default:
			return nil, unsupportedExpr("unsupported select item: %T", e)
		}
	}
	return items, nil
}

func tableWithJoins(exprs vitess.TableExprs) (ast.TableWithJoins, error) {
	if len(exprs) == 0 {
		return ast.TableWithJoins{}, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "SELECT without FROM is not supported")
	}
	relation, joins, err := flattenTableExpr(exprs[0])
	if err != nil {
		return ast.TableWithJoins{}, err
	}
	result := ast.TableWithJoins{Relation: relation, Joins: joins}
	// A comma-separated FROM list beyond the first item is an implicit
	// cross join; its own internal joins, if any, are appended
	// after the cross-join edge that attaches it.
	for _, rest := range exprs[1:] {
		factor, innerJoins, err := flattenTableExpr(rest)
		if err != nil {
			return ast.TableWithJoins{}, err
		}
		result.Joins = append(result.Joins, ast.Join{
			Relation:     factor,
			JoinOperator: ast.JoinInner,
			Constraint:   ast.CrossConstraint{},
		})
		result.Joins = append(result.Joins, innerJoins...)
	}
	return result, nil
}

// flattenTableExpr walks a left-deep vitess join tree into its base relation
// plus an ordered list of joins.
func flattenTableExpr(e vitess.TableExpr) (ast.TableFactor, []ast.Join, error) {
	switch n := e.(type) {
	case *vitess.JoinTableExpr:
		base, joins, err := flattenTableExpr(n.LeftExpr)
		if err != nil {
			return ast.TableFactor{}, nil, err
		}
		right, err := tableFactor(n.RightExpr)
		if err != nil {
			return ast.TableFactor{}, nil, err
		}
		op, err := joinOperator(n.Join)
		if err != nil {
			return ast.TableFactor{}, nil, err
		}
		constraint, err := joinConstraint(n.Join, n.Condition)
		if err != nil {
			return ast.TableFactor{}, nil, err
		}
		joins = append(joins, ast.Join{Relation: right, JoinOperator: op, Constraint: constraint})
		return base, joins, nil
	case *vitess.ParenTableExpr:
		if len(n.Exprs) != 1 {
			return ast.TableFactor{}, nil, unsupportedExpr("unsupported parenthesized table list")
		}
		return flattenTableExpr(n.Exprs[0])
	default:
		factor, err := tableFactor(n)
		return factor, nil, err
	}
}

func joinOperator(kind string) (ast.JoinOperator, error) {
	switch strings.ToLower(kind) {
	case vitess.JoinStr, vitess.StraightJoinStr, vitess.CrossJoinStr, vitess.NaturalJoinStr:
		return ast.JoinInner, nil
	case vitess.LeftJoinStr, vitess.NaturalLeftJoinStr:
		return ast.JoinLeft, nil
	case vitess.RightJoinStr, vitess.NaturalRightJoinStr:
		return ast.JoinRight, nil
	default:
		return 0, unsupportedExpr("unsupported join type: %s", kind)
	}
}

// isNaturalJoin reports whether kind is one of vitess's NATURAL JOIN
// variants, which carry no ON/USING clause in the grammar and instead
// imply matching on every column name common to both sides.
func isNaturalJoin(kind string) bool {
	switch strings.ToLower(kind) {
	case vitess.NaturalJoinStr, vitess.NaturalLeftJoinStr, vitess.NaturalRightJoinStr:
		return true
	default:
		return false
	}
}

func joinConstraint(kind string, c vitess.JoinCondition) (ast.JoinConstraint, error) {
	if isNaturalJoin(kind) {
		return ast.NaturalConstraint{}, nil
	}
	if c.On != nil {
		cond, err := Expr(c.On)
		if err != nil {
			return nil, err
		}
		return ast.OnConstraint{Expr: cond}, nil
	}
	if len(c.Using) > 0 {
		cols := make([]string, len(c.Using))
		for i, col := range c.Using {
			cols[i] = col.String()
		}
		return ast.UsingConstraint{Columns: cols}, nil
	}
	// CROSS JOIN, STRAIGHT_JOIN, or a plain JOIN the grammar let through
	// with no predicate at all: every row pair matches.
	return ast.CrossConstraint{}, nil
}

func tableFactor(e vitess.TableExpr) (ast.TableFactor, error) {
	switch n := e.(type) {
	case *vitess.AliasedTableExpr:
		switch simple := n.Expr.(type) {
		case vitess.TableName:
			return ast.TableFactor{TableName: simple.Name.String(), Alias: n.As.String()}, nil
		case *vitess.Subquery:
			sel, ok := simple.Select.(*vitess.Select)
			if !ok {
				return ast.TableFactor{}, unsupportedExpr("unsupported derived table body: %T", simple.Select)
			}
			q, err := query(sel)
			if err != nil {
				return ast.TableFactor{}, err
			}
			return ast.TableFactor{Subquery: q, Alias: n.As.String()}, nil
		default:
			return ast.TableFactor{}, unsupportedExpr("unsupported table expression: %T", n.Expr)
		}
	default:
		return ast.TableFactor{}, unsupportedExpr("unsupported table expression: %T", e)
	}
}
