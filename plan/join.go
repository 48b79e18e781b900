package plan

import "github.com/gluesql-go/gluesql/ast"

// markHashJoins flags inner equi-joins whose ON constraint is a single
// `a.col = b.col` comparison between the two sides being joined: the
// executor builds a hash table over the joined (right-hand) relation's
// rows instead of a
// nested-loop scan for these.
func markHashJoins(from *ast.TableWithJoins) {
	leftAlias := aliasOf(from.Relation)
	for i := range from.Joins {
		j := &from.Joins[i]
		if j.JoinOperator != ast.JoinInner {
			leftAlias = aliasOf(j.Relation)
			continue
		}
		on, ok := j.Constraint.(ast.OnConstraint)
		if ok {
			if key := equiJoinKey(on.Expr, leftAlias, aliasOf(j.Relation)); key != nil {
				j.HashJoin = key
			}
		}
		leftAlias = aliasOf(j.Relation)
	}
}

func aliasOf(t ast.TableFactor) string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.TableName
}

func equiJoinKey(e ast.Expr, leftAlias, rightAlias string) *ast.HashJoinKey {
	b, ok := e.(*ast.BinaryOpExpr)
	if !ok || b.Op != ast.OpEq {
		return nil
	}
	l, lok := b.Left.(*ast.CompoundIdentifier)
	r, rok := b.Right.(*ast.CompoundIdentifier)
	if !lok || !rok {
		return nil
	}
	switch {
	case l.Table == leftAlias && r.Table == rightAlias:
		return &ast.HashJoinKey{LeftColumn: l.Column, RightColumn: r.Column}
	case l.Table == rightAlias && r.Table == leftAlias:
		return &ast.HashJoinKey{LeftColumn: r.Column, RightColumn: l.Column}
	default:
		return nil
	}
}
