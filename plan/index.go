package plan

import (
	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/schema"
)

// selectIndex looks for a top-level WHERE conjunct shaped `<indexed-expr> OP
// <literal>` against the base relation whose indexed-expr matches one of the
// table's declared indexes exactly, and records that index's name on
// TableFactor.Index so execute can route the scan through store.Index
// instead of a full scan. It picks at most one index per base table, from a
// single WHERE conjunct. Joined relations are left unindexed in this first
// cut; only the FROM clause's base table is considered, matching the common
// case of optimizing the driving table.
func selectIndex(from *ast.TableWithJoins, where ast.Expr, cat *Catalog) error {
	if from.Relation.Subquery != nil || where == nil {
		return nil
	}
	tableSchema, ok := cat.Lookup(from.Relation.TableName)
	if !ok || len(tableSchema.Indexes) == 0 {
		return nil
	}
	for _, conjunct := range conjuncts(where) {
		if item := matchIndexable(conjunct, from.Relation, tableSchema); item != nil {
			from.Relation.Index = item
			return nil
		}
	}
	return nil
}

// conjuncts flattens a top-level AND tree into its leaf predicates.
func conjuncts(e ast.Expr) []ast.Expr {
	if b, ok := e.(*ast.BinaryOpExpr); ok && b.Op == ast.OpAnd {
		return append(conjuncts(b.Left), conjuncts(b.Right)...)
	}
	return []ast.Expr{e}
}

func matchIndexable(e ast.Expr, table ast.TableFactor, tableSchema *schema.Schema) *ast.IndexItem {
	b, ok := e.(*ast.BinaryOpExpr)
	if !ok {
		return nil
	}
	op, ok := indexOp(b.Op)
	if !ok {
		return nil
	}
	col, lit, ok := splitColumnLiteral(b.Left, b.Right, table)
	if !ok {
		return nil
	}
	idx := findColumnIndex(tableSchema, col)
	if idx == nil {
		return nil
	}
	return &ast.IndexItem{Name: idx.Name, Op: op, CmpExpr: lit}
}

// findColumnIndex returns the declared index whose expression matches col
// exactly (a bare column reference to col), or nil if no such index exists.
// Indexes over a compound expression (a cast, a binary op) never match a
// plain `col OP literal` WHERE conjunct, since matchIndexable only ever
// extracts a bare column from one.
func findColumnIndex(s *schema.Schema, col string) *schema.SchemaIndex {
	for i := range s.Indexes {
		ci, ok := s.Indexes[i].Expr.(*ast.CompoundIdentifier)
		if ok && ci.Column == col {
			return &s.Indexes[i]
		}
	}
	return nil
}

func indexOp(op ast.BinOp) (ast.IndexOp, bool) {
	switch op {
	case ast.OpEq:
		return ast.IndexEq, true
	case ast.OpLt:
		return ast.IndexLt, true
	case ast.OpLtEq:
		return ast.IndexLtEq, true
	case ast.OpGt:
		return ast.IndexGt, true
	case ast.OpGtEq:
		return ast.IndexGtEq, true
	default:
		return 0, false
	}
}

// splitColumnLiteral recognizes `table.col OP literal` in either operand
// order, returning the bare column name the index is keyed on.
func splitColumnLiteral(left, right ast.Expr, table ast.TableFactor) (string, ast.Expr, bool) {
	alias := table.Alias
	if alias == "" {
		alias = table.TableName
	}
	if ci, ok := left.(*ast.CompoundIdentifier); ok && ci.Table == alias {
		if _, ok := right.(*ast.Literal); ok {
			return ci.Column, right, true
		}
	}
	if ci, ok := right.(*ast.CompoundIdentifier); ok && ci.Table == alias {
		if _, ok := left.(*ast.Literal); ok {
			return ci.Column, left, true
		}
	}
	return "", nil, false
}
