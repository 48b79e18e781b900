// Package validate enforces row-level integrity: declared
// column types, NOT NULL, UNIQUE/PRIMARY KEY, and foreign-key references.
// It runs after evaluate has produced concrete values and before a storage
// write is issued, so a storage never has to re-derive these checks itself.
package validate

import (
	"context"

	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// Row checks one row's values against its schema's declared types and
// nullability. A schemaless table's row is
// never checked here; its column shape is whatever was inserted.
func Row(s *schema.Schema, vals []value.Value) error {
	if s.IsSchemaless() {
		return nil
	}
	if len(vals) != len(s.ColumnDefs) {
		return gerrors.NewValidateError(gerrors.IncompatibleDataType, "expected %d values for table %s, got %d", len(s.ColumnDefs), s.TableName, len(vals))
	}
	for i, col := range s.ColumnDefs {
		v := vals[i]
		if v.IsNull() {
			if !col.Nullable {
				return gerrors.NewValidateError(gerrors.NullValueOnNotNullField, "column %s.%s does not allow NULL", s.TableName, col.Name)
			}
			continue
		}
		if _, ok := value.Cast(v, col.DataType); !ok {
			return gerrors.NewValidateError(gerrors.IncompatibleDataType, "column %s.%s cannot hold a value of this type", s.TableName, col.Name)
		}
	}
	return nil
}

// Unique checks every UNIQUE/PRIMARY KEY column of the candidate row
// against the table's existing rows. It
// scans rather than using an index because not every storage advertises
// store.Index; callers that hold an index should prefer it and skip this
// when they have already proven uniqueness via a point lookup.
func Unique(ctx context.Context, s *schema.Schema, st store.Store, candidate []value.Value, skipKey *value.Key) error {
	uniqueCols := uniqueColumns(s)
	if len(uniqueCols) == 0 {
		return nil
	}
	seq, err := st.ScanData(ctx, s.TableName)
	if err != nil {
		return err
	}
	defer seq.Close()
	for {
		entry, ok, err := seq.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if skipKey != nil && entry.Key.Compare(*skipKey) == value.EqualOrder {
			continue
		}
		for _, idx := range uniqueCols {
			existing, ok := entry.Row.Get(s.ColumnDefs[idx].Name, s.ColumnNames())
			if !ok || existing.IsNull() || candidate[idx].IsNull() {
				continue
			}
			eq, ok := value.Equal(existing, candidate[idx])
			if ok && eq {
				kind := gerrors.DuplicateEntryOnUniqueField
				if s.ColumnDefs[idx].Unique != nil && s.ColumnDefs[idx].Unique.IsPrimary {
					kind = gerrors.DuplicateEntryOnPrimaryKeyField
				}
				return gerrors.NewValidateError(kind, "duplicate value for %s.%s", s.TableName, s.ColumnDefs[idx].Name)
			}
		}
	}
	return nil
}

func uniqueColumns(s *schema.Schema) []int {
	var out []int
	for i, col := range s.ColumnDefs {
		if col.Unique != nil {
			out = append(out, i)
		}
	}
	return out
}

// ForeignKeys checks that every foreign key column on the candidate row
// references an existing row in its target table.
func ForeignKeys(ctx context.Context, s *schema.Schema, cat func(table string) (*schema.Schema, store.Store, bool), candidate []value.Value) error {
	for _, fk := range s.ForeignKeys {
		col := s.ColumnIndex(fk.ReferencingColumn)
		if col < 0 || candidate[col].IsNull() {
			continue
		}
		refSchema, refStore, ok := cat(fk.ReferencedTable)
		if !ok {
			return gerrors.NewValidateError(gerrors.ReferencedValueNotFound, "referenced table not found: %s", fk.ReferencedTable)
		}
		refCol := refSchema.ColumnIndex(fk.ReferencedColumn)
		if refCol < 0 {
			return gerrors.NewValidateError(gerrors.ReferencedValueNotFound, "referenced column not found: %s.%s", fk.ReferencedTable, fk.ReferencedColumn)
		}
		found, err := referencedRowExists(ctx, refStore, refSchema, refCol, candidate[col])
		if err != nil {
			return err
		}
		if !found {
			return gerrors.NewValidateError(gerrors.ReferencedValueNotFound, "no row in %s.%s matches foreign key value", fk.ReferencedTable, fk.ReferencedColumn)
		}
	}
	return nil
}

func referencedRowExists(ctx context.Context, st store.Store, s *schema.Schema, col int, want value.Value) (bool, error) {
	seq, err := st.ScanData(ctx, s.TableName)
	if err != nil {
		return false, err
	}
	defer seq.Close()
	for {
		entry, ok, err := seq.Next(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		v, ok := entry.Row.Get(s.ColumnDefs[col].Name, s.ColumnNames())
		if !ok {
			continue
		}
		eq, ok := value.Equal(v, want)
		if ok && eq {
			return true, nil
		}
	}
}

// ReferencingRows reports whether any schema in all declares a foreign key
// referencing table, blocking a bare DROP TABLE unless
// CASCADE was requested.
func ReferencingRows(table string, all []*schema.Schema) bool {
	for _, s := range all {
		for _, fk := range s.ForeignKeys {
			if fk.ReferencedTable == table {
				return true
			}
		}
	}
	return false
}
