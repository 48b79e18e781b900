package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/storage/memory"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

func intCol(name string, primary, nullable bool) schema.ColumnDef {
	col := schema.ColumnDef{Name: name, DataType: value.TInt64, Nullable: nullable}
	if primary {
		col.Unique = &schema.UniqueOption{IsPrimary: true}
	}
	return col
}

func TestRowRejectsNullOnNotNullColumn(t *testing.T) {
	s := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", false, false)}}
	err := Row(s, []value.Value{value.NewNull()})
	assert.Error(t, err)
}

func TestRowAcceptsNullOnNullableColumn(t *testing.T) {
	s := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", false, true)}}
	err := Row(s, []value.Value{value.NewNull()})
	assert.NoError(t, err)
}

func TestRowRejectsWrongArity(t *testing.T) {
	s := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", false, false)}}
	err := Row(s, []value.Value{value.NewI64(1), value.NewI64(2)})
	assert.Error(t, err)
}

func TestRowSkipsSchemalessTables(t *testing.T) {
	s := &schema.Schema{TableName: "t"}
	err := Row(s, []value.Value{value.NewI64(1)})
	assert.NoError(t, err)
}

func TestUniqueRejectsDuplicatePrimaryKey(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", true, false)}}
	require.NoError(t, st.InsertSchema(ctx, s))
	_, err := st.AppendData(ctx, "t", []store.DataRow{store.NewVecRow([]value.Value{value.NewI64(1)})})
	require.NoError(t, err)

	err = Unique(ctx, s, st, []value.Value{value.NewI64(1)}, nil)
	assert.Error(t, err)
}

func TestUniqueAllowsDistinctValues(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s := &schema.Schema{TableName: "t", ColumnDefs: []schema.ColumnDef{intCol("id", true, false)}}
	require.NoError(t, st.InsertSchema(ctx, s))
	_, err := st.AppendData(ctx, "t", []store.DataRow{store.NewVecRow([]value.Value{value.NewI64(1)})})
	require.NoError(t, err)

	err = Unique(ctx, s, st, []value.Value{value.NewI64(2)}, nil)
	assert.NoError(t, err)
}

func TestReferencingRowsDetectsForeignKeyUse(t *testing.T) {
	referenced := &schema.Schema{TableName: "parent"}
	referencing := &schema.Schema{
		TableName: "child",
		ForeignKeys: []schema.ForeignKey{
			{ReferencingColumn: "parent_id", ReferencedTable: "parent", ReferencedColumn: "id"},
		},
	}
	assert.True(t, ReferencingRows("parent", []*schema.Schema{referenced, referencing}))
	assert.False(t, ReferencingRows("other", []*schema.Schema{referenced, referencing}))
}
