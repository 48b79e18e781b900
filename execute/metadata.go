package execute

import (
	"context"
	"sort"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

const (
	glueTablesTable       = "GLUE_TABLES"
	glueTableColumnsTable = "GLUE_TABLE_COLUMNS"
)

func isVirtualTable(name string) bool {
	return name == glueTablesTable || name == glueTableColumnsTable
}

func virtualSchema(name string) *schema.Schema {
	switch name {
	case glueTablesTable:
		return &schema.Schema{
			TableName: glueTablesTable,
			ColumnDefs: []schema.ColumnDef{
				{Name: "TABLE_NAME", DataType: value.TText, Nullable: false},
			},
		}
	case glueTableColumnsTable:
		return &schema.Schema{
			TableName: glueTableColumnsTable,
			ColumnDefs: []schema.ColumnDef{
				{Name: "TABLE_NAME", DataType: value.TText, Nullable: false},
				{Name: "COLUMN_NAME", DataType: value.TText, Nullable: false},
				{Name: "COLUMN_ID", DataType: value.TInt64, Nullable: false},
				{Name: "NULLABLE", DataType: value.TBoolean, Nullable: false},
				{Name: "KEY", DataType: value.TText, Nullable: true},
				{Name: "DEFAULT", DataType: value.TText, Nullable: true},
			},
		}
	default:
		return nil
	}
}

// virtualTableNames lists every table GLUE_TABLES/GLUE_TABLE_COLUMNS report
// on, preferring store.Metadata.TableNames when the storage advertises it
// (it may know about tables FetchAllSchemas wouldn't, e.g. views) and
// falling back to FetchAllSchemas otherwise. The two reserved names never
// appear in the result themselves.
func (ex *Executor) virtualTableNames(ctx context.Context) ([]string, error) {
	var names []string
	if meta, ok := store.AsMetadata(ex.Store); ok {
		n, err := meta.TableNames(ctx)
		if err != nil {
			return nil, err
		}
		names = n
	} else {
		all, err := ex.Store.FetchAllSchemas(ctx)
		if err != nil {
			return nil, err
		}
		names = make([]string, len(all))
		for i, s := range all {
			names[i] = s.TableName
		}
	}
	names = ex.restrictToTargets(names)
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !isVirtualTable(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

func keyLabel(c schema.ColumnDef) value.Value {
	switch {
	case c.Unique != nil && c.Unique.IsPrimary:
		return value.NewStr("PRI")
	case c.Unique != nil:
		return value.NewStr("UNI")
	default:
		return value.NewNull()
	}
}

func defaultLabel(c schema.ColumnDef) value.Value {
	if c.Default == nil {
		return value.NewNull()
	}
	return value.NewStr(ast.CanonicalSQL(c.Default))
}

// virtualRows materializes GLUE_TABLES/GLUE_TABLE_COLUMNS as an ordinary row
// set, the same shape scanTable expects from any real table's ScanData.
func (ex *Executor) virtualRows(ctx context.Context, name string) ([]store.RowEntry, error) {
	names, err := ex.virtualTableNames(ctx)
	if err != nil {
		return nil, err
	}

	switch name {
	case glueTablesTable:
		entries := make([]store.RowEntry, len(names))
		for i, n := range names {
			entries[i] = store.RowEntry{
				Key: value.MustKey(value.NewI64(int64(i))),
				Row: store.NewVecRow([]value.Value{value.NewStr(n)}),
			}
		}
		return entries, nil
	case glueTableColumnsTable:
		var entries []store.RowEntry
		for _, tn := range names {
			s, err := ex.Store.FetchSchema(ctx, tn)
			if err != nil {
				return nil, err
			}
			if s == nil || s.IsSchemaless() {
				continue
			}
			for i, c := range s.ColumnDefs {
				entries = append(entries, store.RowEntry{
					Key: value.MustKey(value.NewI64(int64(len(entries)))),
					Row: store.NewVecRow([]value.Value{
						value.NewStr(tn),
						value.NewStr(c.Name),
						value.NewI64(int64(i)),
						value.NewBool(c.Nullable),
						keyLabel(c),
						defaultLabel(c),
					}),
				})
			}
		}
		return entries, nil
	default:
		return nil, nil
	}
}
