package execute_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql"
	"github.com/gluesql-go/gluesql/execute"
	"github.com/gluesql-go/gluesql/storage/memory"
)

func TestGroupByAggregatesAndHaving(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE sales (region TEXT, amount INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, `INSERT INTO sales (region, amount) VALUES
		('east', 10), ('east', 20), ('west', 5)`)
	require.NoError(t, err)

	payload, err := g.Execute(ctx, `
		SELECT region, SUM(amount) AS total FROM sales
		GROUP BY region
		HAVING SUM(amount) > 10
		ORDER BY region`)
	require.NoError(t, err)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "east", payload.Rows[0][0].String())
	assert.Equal(t, "30", payload.Rows[0][1].String())
}

func TestInnerJoin(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "CREATE TABLE books (id INTEGER PRIMARY KEY, author_id INTEGER, title TEXT)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "INSERT INTO authors (id, name) VALUES (1, 'ada')")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "INSERT INTO books (id, author_id, title) VALUES (1, 1, 'notes')")
	require.NoError(t, err)

	payload, err := g.Execute(ctx, `
		SELECT authors.name, books.title FROM authors
		JOIN books ON authors.id = books.author_id`)
	require.NoError(t, err)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "ada", payload.Rows[0][0].String())
	assert.Equal(t, "notes", payload.Rows[0][1].String())
}

func TestAlterTableAddColumn(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "ALTER TABLE t ADD COLUMN label TEXT")
	require.NoError(t, err)

	payload, err := g.Execute(ctx, "SHOW COLUMNS FROM t")
	require.NoError(t, err)
	assert.Equal(t, execute.PayloadShowColumns, payload.Kind)
	require.Len(t, payload.Columns, 2)
	assert.Equal(t, "label", payload.Columns[1].Name)
}

func TestExplicitTransactionIsolatesUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())
	_, err := g.Execute(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	require.NoError(t, g.Begin(ctx))
	_, err = g.Execute(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)

	payload, err := g.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	assert.Len(t, payload.Rows, 1, "the transaction's own connection should see its uncommitted write")

	require.NoError(t, g.Rollback(ctx))
	payload, err = g.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	assert.Empty(t, payload.Rows, "rollback should discard the insert")
}

func TestNaturalJoinMatchesOnCommonColumns(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE employees (id INTEGER, dept TEXT, name TEXT)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "CREATE TABLE depts (dept TEXT, budget INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, `INSERT INTO employees (id, dept, name) VALUES
		(1, 'eng', 'ada'), (2, 'sales', 'bob')`)
	require.NoError(t, err)
	_, err = g.Execute(ctx, `INSERT INTO depts (dept, budget) VALUES ('eng', 100), ('hr', 50)`)
	require.NoError(t, err)

	payload, err := g.Execute(ctx, `
		SELECT employees.name, depts.budget FROM employees
		NATURAL JOIN depts`)
	require.NoError(t, err)
	require.Len(t, payload.Rows, 1, "only the eng/eng dept pair shares a dept value")
	assert.Equal(t, "ada", payload.Rows[0][0].String())
	assert.Equal(t, "100", payload.Rows[0][1].String())
}

func TestNaturalLeftJoinNullPadsUnmatchedRows(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE employees (id INTEGER, dept TEXT, name TEXT)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "CREATE TABLE depts (dept TEXT, budget INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, `INSERT INTO employees (id, dept, name) VALUES
		(1, 'eng', 'ada'), (2, 'sales', 'bob')`)
	require.NoError(t, err)
	_, err = g.Execute(ctx, `INSERT INTO depts (dept, budget) VALUES ('eng', 100)`)
	require.NoError(t, err)

	payload, err := g.Execute(ctx, `
		SELECT employees.name, depts.budget FROM employees
		NATURAL LEFT JOIN depts
		ORDER BY employees.name`)
	require.NoError(t, err)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "ada", payload.Rows[0][0].String())
	assert.Equal(t, "100", payload.Rows[0][1].String())
	assert.Equal(t, "bob", payload.Rows[1][0].String())
	assert.True(t, payload.Rows[1][1].IsNull(), "bob's dept has no matching row in depts, so budget should null-pad")
}

func TestCommaJoinIsUnconditionalCrossProduct(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE a (x INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "CREATE TABLE b (y INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "INSERT INTO a VALUES (1), (2)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "INSERT INTO b VALUES (10), (20)")
	require.NoError(t, err)

	payload, err := g.Execute(ctx, "SELECT a.x, b.y FROM a, b")
	require.NoError(t, err)
	assert.Len(t, payload.Rows, 4, "an implicit comma join is a cross product regardless of any shared column names")
}

func TestDropTableRemovesSchema(t *testing.T) {
	ctx := context.Background()
	g := gluesql.New(memory.New())
	_, err := g.Execute(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	_, err = g.Execute(ctx, "DROP TABLE t")
	require.NoError(t, err)

	_, err = g.Execute(ctx, "SELECT id FROM t")
	assert.Error(t, err)
}
