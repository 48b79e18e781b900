package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

func intCol(name string, primary bool) schema.ColumnDef {
	col := schema.ColumnDef{Name: name, DataType: value.TInt64, Nullable: false}
	if primary {
		col.Unique = &schema.UniqueOption{IsPrimary: true}
	}
	return col
}

func TestAppendDataAssignsKeys(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		schema  *schema.Schema
		rows    []store.DataRow
		wantKey []value.Value
	}{
		{
			name:   "primary key column is used verbatim",
			schema: &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", true)}},
			rows: []store.DataRow{
				store.NewVecRow([]value.Value{value.NewI64(7)}),
			},
			wantKey: []value.Value{value.NewI64(7)},
		},
		{
			name:   "no primary key falls back to a per-table counter",
			schema: &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", false)}},
			rows: []store.DataRow{
				store.NewVecRow([]value.Value{value.NewI64(100)}),
				store.NewVecRow([]value.Value{value.NewI64(200)}),
			},
			wantKey: []value.Value{value.NewI64(0), value.NewI64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			require.NoError(t, s.InsertSchema(ctx, tt.schema))
			keys, err := s.AppendData(ctx, "t", tt.rows)
			require.NoError(t, err)
			require.Len(t, keys, len(tt.wantKey))
			for i, want := range tt.wantKey {
				assert.Equal(t, want, keys[i].Value())
			}
		})
	}
}

func TestScanDataPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, &schema.Schema{
		TableName:  "t",
		ColumnDefs: []schema.ColumnDef{intCol("id", false)},
	}))
	_, err := s.AppendData(ctx, "t", []store.DataRow{
		store.NewVecRow([]value.Value{value.NewI64(1)}),
		store.NewVecRow([]value.Value{value.NewI64(2)}),
		store.NewVecRow([]value.Value{value.NewI64(3)}),
	})
	require.NoError(t, err)

	seq, err := s.ScanData(ctx, "t")
	require.NoError(t, err)
	defer seq.Close()

	var got []int64
	for {
		entry, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, entry.Row.Vec[0].I64)
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestDeleteDataCompactsOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	sc := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", true)}}
	require.NoError(t, s.InsertSchema(ctx, sc))
	keys, err := s.AppendData(ctx, "t", []store.DataRow{
		store.NewVecRow([]value.Value{value.NewI64(1)}),
		store.NewVecRow([]value.Value{value.NewI64(2)}),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteData(ctx, "t", []value.Key{keys[0]}))

	seq, err := s.ScanData(ctx, "t")
	require.NoError(t, err)
	defer seq.Close()
	entry, ok, err := seq.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), entry.Row.Vec[0].I64)

	_, ok, err = seq.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateIndexAndScanIndexedData(t *testing.T) {
	ctx := context.Background()
	s := New()
	sc := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", true), intCol("score", false)}}
	require.NoError(t, s.InsertSchema(ctx, sc))
	_, err := s.AppendData(ctx, "t", []store.DataRow{
		store.NewVecRow([]value.Value{value.NewI64(1), value.NewI64(30)}),
		store.NewVecRow([]value.Value{value.NewI64(2), value.NewI64(10)}),
		store.NewVecRow([]value.Value{value.NewI64(3), value.NewI64(20)}),
	})
	require.NoError(t, err)

	// Index expressions arrive already resolved to a CompoundIdentifier (the
	// job of execute.resolveIndexExpr in normal operation); built directly
	// here to exercise the storage layer in isolation.
	idx := schema.SchemaIndex{
		Name:  "idx_score",
		Expr:  &ast.CompoundIdentifier{Table: "t", Column: "score"},
		Order: schema.Asc,
	}
	require.NoError(t, s.CreateIndex(ctx, "t", idx))

	seq, err := s.ScanIndexedData(ctx, "t", "idx_score", nil, nil, true)
	require.NoError(t, err)
	defer seq.Close()

	var scores []int64
	for {
		entry, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		scores = append(scores, entry.Row.Vec[1].I64)
	}
	assert.Equal(t, []int64{10, 20, 30}, scores)
}
