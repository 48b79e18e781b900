package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// execDelete is the DELETE operator: scan, re-apply WHERE, then
// enforce every other table's foreign keys that reference this one before
// issuing the delete.
func (ex *Executor) execDelete(ctx context.Context, n *ast.DeleteStmt) (*Payload, error) {
	sm, err := ex.asStoreMut()
	if err != nil {
		return nil, err
	}
	s, err := ex.schemaFor(ctx, n.TableName)
	if err != nil {
		return nil, err
	}

	seq, err := ex.Store.ScanData(ctx, n.TableName)
	if err != nil {
		return nil, err
	}
	defer seq.Close()

	var columns []string
	if !s.IsSchemaless() {
		columns = s.ColumnNames()
	}

	all, err := ex.Store.FetchAllSchemas(ctx)
	if err != nil {
		return nil, err
	}

	var keys []value.Key
	for {
		entry, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row := rowFromEntry(n.TableName, columns, entry)
		keep, err := ex.evalBool(ctx, n.Selection, row)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		if !s.IsSchemaless() {
			if err := ex.enforceReferentialActions(ctx, s, columns, entry, all); err != nil {
				return nil, err
			}
		}
		keys = append(keys, entry.Key)
	}

	if err := sm.DeleteData(ctx, n.TableName, keys); err != nil {
		return nil, err
	}
	return &Payload{Kind: PayloadDelete, Count: len(keys)}, nil
}

// enforceReferentialActions applies the ON DELETE behavior every other
// table declared for a foreign key pointing at s: NoAction blocks the
// delete if a referencing row exists, Cascade deletes those rows first,
// SetNull nulls out their referencing column.
func (ex *Executor) enforceReferentialActions(ctx context.Context, s *schema.Schema, columns []string, entry store.RowEntry, all []*schema.Schema) error {
	for _, other := range all {
		for _, fk := range other.ForeignKeys {
			if fk.ReferencedTable != s.TableName {
				continue
			}
			refCol := s.ColumnIndex(fk.ReferencedColumn)
			if refCol < 0 {
				continue
			}
			want, ok := entry.Row.Get(fk.ReferencedColumn, columns)
			if !ok || want.IsNull() {
				continue
			}
			switch fk.OnDelete {
			case schema.Cascade:
				if err := ex.deleteReferencing(ctx, other, fk.ReferencingColumn, want); err != nil {
					return err
				}
			case schema.SetNull:
				if err := ex.nullReferencing(ctx, other, fk.ReferencingColumn, want); err != nil {
					return err
				}
			default:
				found, err := ex.anyReferencing(ctx, other, fk.ReferencingColumn, want)
				if err != nil {
					return err
				}
				if found {
					return gerrors.NewExecuteError(gerrors.ForeignKeyViolation, "row in %s.%s still references %s.%s", other.TableName, fk.ReferencingColumn, s.TableName, fk.ReferencedColumn)
				}
			}
		}
	}
	return nil
}

// scanReferencing walks other's table looking for rows whose referencing
// column matches want, invoking visit with each match's key and row.
func (ex *Executor) scanReferencing(ctx context.Context, other *schema.Schema, column string, want value.Value, visit func(value.Key, store.DataRow) error) error {
	seq, err := ex.Store.ScanData(ctx, other.TableName)
	if err != nil {
		return err
	}
	defer seq.Close()
	var columns []string
	if !other.IsSchemaless() {
		columns = other.ColumnNames()
	}
	for {
		entry, ok, err := seq.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		v, ok := entry.Row.Get(column, columns)
		if !ok {
			continue
		}
		if eq, ok := value.Equal(v, want); !ok || !eq {
			continue
		}
		if err := visit(entry.Key, entry.Row); err != nil {
			return err
		}
	}
}

func (ex *Executor) anyReferencing(ctx context.Context, other *schema.Schema, column string, want value.Value) (bool, error) {
	found := false
	err := ex.scanReferencing(ctx, other, column, want, func(value.Key, store.DataRow) error {
		found = true
		return nil
	})
	return found, err
}

func (ex *Executor) deleteReferencing(ctx context.Context, other *schema.Schema, column string, want value.Value) error {
	sm, err := ex.asStoreMut()
	if err != nil {
		return err
	}
	var keys []value.Key
	if err := ex.scanReferencing(ctx, other, column, want, func(k value.Key, _ store.DataRow) error {
		keys = append(keys, k)
		return nil
	}); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return sm.DeleteData(ctx, other.TableName, keys)
}

func (ex *Executor) nullReferencing(ctx context.Context, other *schema.Schema, column string, want value.Value) error {
	sm, err := ex.asStoreMut()
	if err != nil {
		return err
	}
	idx := other.ColumnIndex(column)
	var rows []store.KeyedRow
	if err := ex.scanReferencing(ctx, other, column, want, func(k value.Key, row store.DataRow) error {
		updated := row.Clone()
		if updated.IsMap {
			updated.Values[column] = value.NewNull()
		} else if idx >= 0 && idx < len(updated.Vec) {
			updated.Vec[idx] = value.NewNull()
		}
		rows = append(rows, store.KeyedRow{Key: k, Row: updated})
		return nil
	}); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return sm.InsertData(ctx, other.TableName, rows)
}
