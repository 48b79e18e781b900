package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/value"
)

func catalogWith(schemas ...*schema.Schema) *Catalog {
	return NewCatalog(schemas)
}

func TestStatementResolvesBareIdentifier(t *testing.T) {
	cat := catalogWith(&schema.Schema{
		TableName:  "users",
		ColumnDefs: []schema.ColumnDef{{Name: "id", DataType: value.TInt64}},
	})
	stmt := &ast.QueryStmt{Body: ast.Query{
		Body: ast.SelectSetExpr{Select: ast.Select{
			Projection: []ast.SelectItem{ast.ExprItem{Expr: &ast.Identifier{Name: "id"}}},
			From:       ast.TableWithJoins{Relation: ast.TableFactor{TableName: "users"}},
			Selection:  &ast.Identifier{Name: "id"},
		}},
	}}

	planned, err := Statement(stmt, cat)
	require.NoError(t, err)
	q := planned.(*ast.QueryStmt)
	sel := q.Body.Body.(ast.SelectSetExpr).Select

	item := sel.Projection[0].(ast.ExprItem)
	compound, ok := item.Expr.(*ast.CompoundIdentifier)
	require.True(t, ok)
	assert.Equal(t, "users", compound.Table)
	assert.Equal(t, "id", compound.Column)
}

func TestStatementRejectsUnknownTable(t *testing.T) {
	cat := catalogWith()
	stmt := &ast.QueryStmt{Body: ast.Query{
		Body: ast.SelectSetExpr{Select: ast.Select{
			Projection: []ast.SelectItem{ast.WildcardItem{}},
			From:       ast.TableWithJoins{Relation: ast.TableFactor{TableName: "ghost"}},
		}},
	}}

	_, err := Statement(stmt, cat)
	assert.Error(t, err)
}

func TestSelectIndexChoosesDeclaredIndexByExpr(t *testing.T) {
	cat := catalogWith(&schema.Schema{
		TableName:  "d",
		ColumnDefs: []schema.ColumnDef{{Name: "t", DataType: value.TInt64}},
		Indexes: []schema.SchemaIndex{
			{Name: "ix", Expr: &ast.CompoundIdentifier{Table: "d", Column: "t"}, Order: schema.Asc},
		},
	})
	stmt := &ast.QueryStmt{Body: ast.Query{
		Body: ast.SelectSetExpr{Select: ast.Select{
			Projection: []ast.SelectItem{ast.WildcardItem{}},
			From:       ast.TableWithJoins{Relation: ast.TableFactor{TableName: "d"}},
			Selection: &ast.BinaryOpExpr{
				Op:    ast.OpLtEq,
				Left:  &ast.CompoundIdentifier{Table: "d", Column: "t"},
				Right: &ast.Literal{Value: value.NewI64(10)},
			},
		}},
	}}

	planned, err := Statement(stmt, cat)
	require.NoError(t, err)
	q := planned.(*ast.QueryStmt)
	relation := q.Body.Body.(ast.SelectSetExpr).Select.From.Relation

	require.NotNil(t, relation.Index)
	assert.Equal(t, "ix", relation.Index.Name)
	assert.Equal(t, ast.IndexLtEq, relation.Index.Op)
}

func TestSelectIndexIgnoresColumnWithNoDeclaredIndex(t *testing.T) {
	cat := catalogWith(&schema.Schema{
		TableName:  "d",
		ColumnDefs: []schema.ColumnDef{{Name: "t", DataType: value.TInt64}},
	})
	stmt := &ast.QueryStmt{Body: ast.Query{
		Body: ast.SelectSetExpr{Select: ast.Select{
			Projection: []ast.SelectItem{ast.WildcardItem{}},
			From:       ast.TableWithJoins{Relation: ast.TableFactor{TableName: "d"}},
			Selection: &ast.BinaryOpExpr{
				Op:    ast.OpLtEq,
				Left:  &ast.CompoundIdentifier{Table: "d", Column: "t"},
				Right: &ast.Literal{Value: value.NewI64(10)},
			},
		}},
	}}

	planned, err := Statement(stmt, cat)
	require.NoError(t, err)
	q := planned.(*ast.QueryStmt)
	relation := q.Body.Body.(ast.SelectSetExpr).Select.From.Relation
	assert.Nil(t, relation.Index)
}

func TestSelectIndexDoesNotMatchIndexOnDifferentColumn(t *testing.T) {
	cat := catalogWith(&schema.Schema{
		TableName: "d",
		ColumnDefs: []schema.ColumnDef{
			{Name: "t", DataType: value.TInt64},
			{Name: "other", DataType: value.TInt64},
		},
		Indexes: []schema.SchemaIndex{
			// An index whose name happens to equal the queried column's
			// name, but whose expression indexes a different column
			// entirely: matching on name instead of Expr would wrongly
			// pick this one.
			{Name: "t", Expr: &ast.CompoundIdentifier{Table: "d", Column: "other"}, Order: schema.Asc},
		},
	})
	stmt := &ast.QueryStmt{Body: ast.Query{
		Body: ast.SelectSetExpr{Select: ast.Select{
			Projection: []ast.SelectItem{ast.WildcardItem{}},
			From:       ast.TableWithJoins{Relation: ast.TableFactor{TableName: "d"}},
			Selection: &ast.BinaryOpExpr{
				Op:    ast.OpLtEq,
				Left:  &ast.CompoundIdentifier{Table: "d", Column: "t"},
				Right: &ast.Literal{Value: value.NewI64(10)},
			},
		}},
	}}

	planned, err := Statement(stmt, cat)
	require.NoError(t, err)
	q := planned.(*ast.QueryStmt)
	relation := q.Body.Body.(ast.SelectSetExpr).Select.From.Relation
	assert.Nil(t, relation.Index)
}

func TestStatementRejectsAmbiguousColumn(t *testing.T) {
	cat := catalogWith(
		&schema.Schema{TableName: "a", ColumnDefs: []schema.ColumnDef{{Name: "id", DataType: value.TInt64}}},
		&schema.Schema{TableName: "b", ColumnDefs: []schema.ColumnDef{{Name: "id", DataType: value.TInt64}}},
	)
	stmt := &ast.QueryStmt{Body: ast.Query{
		Body: ast.SelectSetExpr{Select: ast.Select{
			Projection: []ast.SelectItem{ast.ExprItem{Expr: &ast.Identifier{Name: "id"}}},
			From: ast.TableWithJoins{
				Relation: ast.TableFactor{TableName: "a"},
				Joins: []ast.Join{{
					Relation:     ast.TableFactor{TableName: "b"},
					JoinOperator: ast.JoinInner,
					Constraint:   ast.OnConstraint{Expr: &ast.Literal{Value: value.NewBool(true)}},
				}},
			},
		}},
	}}

	_, err := Statement(stmt, cat)
	assert.Error(t, err)
}
