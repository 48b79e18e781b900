package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/validate"
)

// rowFromEntry wraps a single scanned row under its bare table name, the
// alias plan.singleTableScope resolves UPDATE/DELETE's Selection against.
func rowFromEntry(table string, columns []string, entry store.RowEntry) *evaluate.RowContext {
	return &evaluate.RowContext{
		Tables: map[string]evaluate.TableRow{table: {Columns: columns, Row: entry.Row}},
	}
}

// applyAssignments evaluates each `col = expr` against the current row and
// returns the row with those columns replaced.
func (ex *Executor) applyAssignments(ctx context.Context, s *schema.Schema, row *evaluate.RowContext, assigns []ast.Assignment) (store.DataRow, error) {
	current := row.Tables[s.TableName].Row.Clone()
	for _, a := range assigns {
		v, err := ex.evalValue(ctx, a.Value, row)
		if err != nil {
			return store.DataRow{}, err
		}
		if current.IsMap {
			current.Values[a.Column] = v
			continue
		}
		idx := s.ColumnIndex(a.Column)
		if idx < 0 || idx >= len(current.Vec) {
			return store.DataRow{}, gerrors.NewExecuteError(gerrors.LackOfRequiredColumn, "unknown column %s.%s", s.TableName, a.Column)
		}
		current.Vec[idx] = v
	}
	return current, nil
}

// execUpdate is the UPDATE operator: scan, re-apply WHERE,
// apply each assignment over the matched row's current values, validate,
// and upsert by the row's existing Key (never a new one).
func (ex *Executor) execUpdate(ctx context.Context, n *ast.UpdateStmt) (*Payload, error) {
	sm, err := ex.asStoreMut()
	if err != nil {
		return nil, err
	}
	s, err := ex.schemaFor(ctx, n.TableName)
	if err != nil {
		return nil, err
	}
	if !s.IsSchemaless() {
		for _, a := range n.Assignments {
			if idx := s.PrimaryKeyColumn(); idx >= 0 && s.ColumnDefs[idx].Name == a.Column {
				return nil, gerrors.NewExecuteError(gerrors.UpdateOnPrimaryKeyNotSupported, "cannot UPDATE the primary key column %s.%s", n.TableName, a.Column)
			}
		}
	}

	seq, err := ex.Store.ScanData(ctx, n.TableName)
	if err != nil {
		return nil, err
	}
	defer seq.Close()

	var updated []store.KeyedRow
	for {
		entry, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		var columns []string
		if !s.IsSchemaless() {
			columns = s.ColumnNames()
		}
		row := rowFromEntry(n.TableName, columns, entry)
		keep, err := ex.evalBool(ctx, n.Selection, row)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		newRow, err := ex.applyAssignments(ctx, s, row, n.Assignments)
		if err != nil {
			return nil, err
		}
		if !s.IsSchemaless() {
			vals := newRow.Vec
			if err := validate.Row(s, vals); err != nil {
				return nil, err
			}
			k := entry.Key
			if err := validate.Unique(ctx, s, ex.Store, vals, &k); err != nil {
				return nil, err
			}
			if err := validate.ForeignKeys(ctx, s, ex.catalogLookup(ctx), vals); err != nil {
				return nil, err
			}
		}
		updated = append(updated, store.KeyedRow{Key: entry.Key, Row: newRow})
	}

	if err := sm.InsertData(ctx, n.TableName, updated); err != nil {
		return nil, err
	}
	return &Payload{Kind: PayloadUpdate, Count: len(updated)}, nil
}
