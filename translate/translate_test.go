package translate

import (
	"testing"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/ast"
)

func parse(t *testing.T, sql string) ast.Statement {
	t.Helper()
	vstmt, err := vitess.Parse(sql)
	require.NoError(t, err)
	stmt, err := Statement(vstmt)
	require.NoError(t, err)
	return stmt
}

func TestStatementLowersCreateTable(t *testing.T) {
	stmt := parse(t, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	create, ok := stmt.(*ast.CreateTableStmt)
	require.True(t, ok)
	assert.Equal(t, "users", create.TableName)
	require.Len(t, create.Columns, 2)
	assert.Equal(t, "id", create.Columns[0].Name)
	assert.True(t, create.Columns[0].IsPrimary)
	assert.Equal(t, "name", create.Columns[1].Name)
	assert.False(t, create.Columns[1].Nullable)
}

func TestStatementLowersInsertValues(t *testing.T) {
	stmt := parse(t, "INSERT INTO users (id, name) VALUES (1, 'alice')")
	insert, ok := stmt.(*ast.InsertStmt)
	require.True(t, ok)
	assert.Equal(t, "users", insert.TableName)
	assert.Equal(t, []string{"id", "name"}, insert.Columns)
	values, ok := insert.Source.(ast.ValuesSetExpr)
	require.True(t, ok)
	require.Len(t, values.Rows, 1)
	require.Len(t, values.Rows[0], 2)
}

func TestStatementLowersSelectWhere(t *testing.T) {
	stmt := parse(t, "SELECT id, name FROM users WHERE id = 1")
	query, ok := stmt.(*ast.QueryStmt)
	require.True(t, ok)
	sel, ok := query.Body.Body.(ast.SelectSetExpr)
	require.True(t, ok)
	assert.Equal(t, "users", sel.Select.From.Relation.TableName)
	assert.NotNil(t, sel.Select.Selection)
}

func TestStatementLowersUpdate(t *testing.T) {
	stmt := parse(t, "UPDATE users SET name = 'bob' WHERE id = 1")
	update, ok := stmt.(*ast.UpdateStmt)
	require.True(t, ok)
	assert.Equal(t, "users", update.TableName)
	require.Len(t, update.Assignments, 1)
	assert.Equal(t, "name", update.Assignments[0].Column)
	assert.NotNil(t, update.Selection)
}

func TestStatementLowersDelete(t *testing.T) {
	stmt := parse(t, "DELETE FROM users WHERE id = 1")
	del, ok := stmt.(*ast.DeleteStmt)
	require.True(t, ok)
	assert.Equal(t, "users", del.TableName)
	assert.NotNil(t, del.Selection)
}

func TestStatementRejectsUnionQueries(t *testing.T) {
	vstmt, err := vitess.Parse("SELECT id FROM a UNION SELECT id FROM b")
	require.NoError(t, err)
	_, err = Statement(vstmt)
	assert.Error(t, err)
}

func TestStatementLowersNaturalJoinToNaturalConstraint(t *testing.T) {
	stmt := parse(t, "SELECT * FROM a NATURAL JOIN b")
	query, ok := stmt.(*ast.QueryStmt)
	require.True(t, ok)
	sel := query.Body.Body.(ast.SelectSetExpr).Select
	require.Len(t, sel.From.Joins, 1)
	assert.IsType(t, ast.NaturalConstraint{}, sel.From.Joins[0].Constraint)
}

func TestStatementLowersNaturalLeftJoinToNaturalConstraint(t *testing.T) {
	stmt := parse(t, "SELECT * FROM a NATURAL LEFT JOIN b")
	query, ok := stmt.(*ast.QueryStmt)
	require.True(t, ok)
	sel := query.Body.Body.(ast.SelectSetExpr).Select
	require.Len(t, sel.From.Joins, 1)
	assert.IsType(t, ast.NaturalConstraint{}, sel.From.Joins[0].Constraint)
	assert.Equal(t, ast.JoinLeft, sel.From.Joins[0].JoinOperator)
}

// A comma-separated FROM list and an explicit CROSS JOIN both carry no
// predicate, but neither means NATURAL JOIN's column-intersection
// matching: they lower to the distinct CrossConstraint marker instead.
func TestStatementLowersCommaJoinToCrossConstraint(t *testing.T) {
	stmt := parse(t, "SELECT * FROM a, b")
	query, ok := stmt.(*ast.QueryStmt)
	require.True(t, ok)
	sel := query.Body.Body.(ast.SelectSetExpr).Select
	require.Len(t, sel.From.Joins, 1)
	assert.IsType(t, ast.CrossConstraint{}, sel.From.Joins[0].Constraint)
}

func TestStatementLowersCrossJoinToCrossConstraint(t *testing.T) {
	stmt := parse(t, "SELECT * FROM a CROSS JOIN b")
	query, ok := stmt.(*ast.QueryStmt)
	require.True(t, ok)
	sel := query.Body.Body.(ast.SelectSetExpr).Select
	require.Len(t, sel.From.Joins, 1)
	assert.IsType(t, ast.CrossConstraint{}, sel.From.Joins[0].Constraint)
}

func TestStatementLowersTransactionControl(t *testing.T) {
	assert.IsType(t, &ast.StartTransactionStmt{}, parse(t, "BEGIN"))
	assert.IsType(t, &ast.CommitStmt{}, parse(t, "COMMIT"))
	assert.IsType(t, &ast.RollbackStmt{}, parse(t, "ROLLBACK"))
}
