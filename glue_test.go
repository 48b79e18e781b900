package gluesql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/execute"
	"github.com/gluesql-go/gluesql/storage/memory"
)

func TestExecuteCreateInsertSelect(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())

	_, err := g.Execute(ctx, "CREATE TABLE users (id INTEGER, name TEXT)")
	require.NoError(t, err)

	_, err = g.Execute(ctx, "INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob')")
	require.NoError(t, err)

	payload, err := g.Execute(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, execute.PayloadSelect, payload.Kind)
	assert.Equal(t, []string{"id", "name"}, payload.Labels)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "alice", payload.Rows[0][1].String())
	assert.Equal(t, "bob", payload.Rows[1][1].String())
}

func TestExecuteScriptRunsEachStatement(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())

	payloads, err := g.ExecuteScript(ctx, `
		CREATE TABLE nums (n INTEGER);
		INSERT INTO nums VALUES (1);
		INSERT INTO nums VALUES (2);
		SELECT n FROM nums ORDER BY n;
	`)
	require.NoError(t, err)
	require.Len(t, payloads, 4)
	last := payloads[3]
	assert.Equal(t, execute.PayloadSelect, last.Kind)
	require.Len(t, last.Rows, 2)
	assert.Equal(t, "1", last.Rows[0][0].String())
	assert.Equal(t, "2", last.Rows[1][0].String())
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())
	_, err := g.Execute(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	err = g.Transaction(ctx, func(ctx context.Context) error {
		_, err := g.Execute(ctx, "INSERT INTO t VALUES (1)")
		return err
	})
	require.NoError(t, err)

	payload, err := g.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	assert.Len(t, payload.Rows, 1)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())
	_, err := g.Execute(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	wantErr := assert.AnError
	err = g.Transaction(ctx, func(ctx context.Context) error {
		if _, err := g.Execute(ctx, "INSERT INTO t VALUES (1)"); err != nil {
			return err
		}
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	payload, err := g.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	assert.Empty(t, payload.Rows)
}

func TestGlueTablesVirtualTable(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())
	_, err := g.Execute(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	payload, err := g.Execute(ctx, "SELECT TABLE_NAME FROM GLUE_TABLES")
	require.NoError(t, err)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "widgets", payload.Rows[0][0].String())
}
