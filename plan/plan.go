// Package plan performs the name-resolution, index-selection, join-strategy,
// constant-folding, and subquery-correlation passes asks for
// between translate and evaluate. Every pass is a pure tree rewrite: it
// never touches storage and never blocks.
package plan

import (
	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
)

// Catalog is the read-only set of schemas the planner resolves names and
// indexes against. The façade builds one per statement from the storage's
// FetchAllSchemas.
type Catalog struct {
	schemas map[string]*schema.Schema
}

func NewCatalog(schemas []*schema.Schema) *Catalog {
	c := &Catalog{schemas: make(map[string]*schema.Schema, len(schemas))}
	for _, s := range schemas {
		c.schemas[s.TableName] = s
	}
	return c
}

func (c *Catalog) Lookup(table string) (*schema.Schema, bool) {
	s, ok := c.schemas[table]
	return s, ok
}

// Statement runs every planning pass over one translated statement and
// returns the annotated tree the executor consumes.
func Statement(stmt ast.Statement, cat *Catalog) (ast.Statement, error) {
	switch n := stmt.(type) {
	case *ast.QueryStmt:
		body, err := query(&n.Body, cat, nil)
		if err != nil {
			return nil, err
		}
		n.Body = *body
		return n, nil
	case *ast.InsertStmt:
		if sel, ok := n.Source.(ast.SelectSetExpr); ok {
			planned, err := selectClause(&sel.Select, nil, cat, nil)
			if err != nil {
				return nil, err
			}
			n.Source = ast.SelectSetExpr{Select: *planned}
		} else if values, ok := n.Source.(ast.ValuesSetExpr); ok {
			for _, row := range values.Rows {
				for i, e := range row {
					folded, err := fold(e)
					if err != nil {
						return nil, err
					}
					row[i] = folded
				}
			}
		}
		return n, nil
	case *ast.UpdateStmt:
		sc, err := singleTableScope(n.TableName, cat)
		if err != nil {
			return nil, err
		}
		resolved, err := resolveExpr(n.Selection, sc)
		if err != nil {
			return nil, err
		}
		sel, err := foldOpt(resolved)
		if err != nil {
			return nil, err
		}
		n.Selection = sel
		for i := range n.Assignments {
			resolved, err := resolveExpr(n.Assignments[i].Value, sc)
			if err != nil {
				return nil, err
			}
			folded, err := fold(resolved)
			if err != nil {
				return nil, err
			}
			n.Assignments[i].Value = folded
		}
		return n, nil
	case *ast.DeleteStmt:
		sc, err := singleTableScope(n.TableName, cat)
		if err != nil {
			return nil, err
		}
		resolved, err := resolveExpr(n.Selection, sc)
		if err != nil {
			return nil, err
		}
		sel, err := foldOpt(resolved)
		if err != nil {
			return nil, err
		}
		n.Selection = sel
		return n, nil
	default:
		return stmt, nil
	}
}

func query(q *ast.Query, cat *Catalog, outer *scope) (*ast.Query, error) {
	switch body := q.Body.(type) {
	case ast.SelectSetExpr:
		planned, err := selectClause(&body.Select, q.OrderBy, cat, outer)
		if err != nil {
			return nil, err
		}
		q.Body = ast.SelectSetExpr{Select: *planned}
	case ast.ValuesSetExpr:
		for _, row := range body.Rows {
			for i, e := range row {
				folded, err := fold(e)
				if err != nil {
					return nil, err
				}
				row[i] = folded
			}
		}
	}
	for i, o := range q.OrderBy {
		folded, err := fold(o.Expr)
		if err != nil {
			return nil, err
		}
		q.OrderBy[i].Expr = folded
	}
	if q.Limit != nil {
		folded, err := fold(q.Limit)
		if err != nil {
			return nil, err
		}
		q.Limit = folded
	}
	if q.Offset != nil {
		folded, err := fold(q.Offset)
		if err != nil {
			return nil, err
		}
		q.Offset = folded
	}
	return q, nil
}

// singleTableScope builds the one-relation scope UPDATE/DELETE resolve
// their WHERE and assignment expressions against ( scopes both
// statements to exactly one target table, so there is never an alias to
// disambiguate).
func singleTableScope(table string, cat *Catalog) (*scope, error) {
	return buildScope(&ast.TableWithJoins{Relation: ast.TableFactor{TableName: table}}, cat, nil)
}

func foldOpt(e ast.Expr) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return fold(e)
}

func selectClause(sel *ast.Select, orderBy []ast.OrderByExpr, cat *Catalog, outer *scope) (*ast.Select, error) {
	sc, err := buildScope(&sel.From, cat, outer)
	if err != nil {
		return nil, err
	}

	for i := range orderBy {
		resolved, err := resolveExpr(orderBy[i].Expr, sc)
		if err != nil {
			return nil, err
		}
		orderBy[i].Expr = resolved
	}

	if sel.Selection != nil {
		resolved, err := resolveExpr(sel.Selection, sc)
		if err != nil {
			return nil, err
		}
		folded, err := fold(resolved)
		if err != nil {
			return nil, err
		}
		sel.Selection = folded
	}

	for i, item := range sel.Projection {
		if ei, ok := item.(ast.ExprItem); ok {
			resolved, err := resolveExpr(ei.Expr, sc)
			if err != nil {
				return nil, err
			}
			ei.Expr = resolved
			sel.Projection[i] = ei
		}
	}

	for i, g := range sel.GroupBy {
		resolved, err := resolveExpr(g, sc)
		if err != nil {
			return nil, err
		}
		sel.GroupBy[i] = resolved
	}

	if sel.Having != nil {
		resolved, err := resolveExpr(sel.Having, sc)
		if err != nil {
			return nil, err
		}
		sel.Having = resolved
	}

	for i := range sel.From.Joins {
		join := &sel.From.Joins[i]
		if on, ok := join.Constraint.(ast.OnConstraint); ok {
			resolved, err := resolveExpr(on.Expr, sc)
			if err != nil {
				return nil, err
			}
			join.Constraint = ast.OnConstraint{Expr: resolved}
		}
	}

	if err := selectIndex(&sel.From, sel.Selection, cat); err != nil {
		return nil, err
	}
	markHashJoins(&sel.From)

	return sel, nil
}
