package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/validate"
	"github.com/gluesql-go/gluesql/value"
)

func (ex *Executor) asStoreMut() (store.StoreMut, error) {
	sm, ok := ex.Store.(store.StoreMut)
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.StorageCapabilityNotSupported, "storage does not support writes")
	}
	return sm, nil
}

// catalogLookup backs validate.ForeignKeys: a single-storage executor
// resolves every referenced table against the same Store it is already
// using.
func (ex *Executor) catalogLookup(ctx context.Context) func(string) (*schema.Schema, store.Store, bool) {
	return func(table string) (*schema.Schema, store.Store, bool) {
		s, err := ex.Store.FetchSchema(ctx, table)
		if err != nil || s == nil {
			return nil, nil, false
		}
		return s, ex.Store, true
	}
}

// execInsert is the INSERT operator: it materializes Source
// (either a VALUES list or a SELECT), orders each row's values to the
// table's declared column order when an explicit column list was given,
// fills declared defaults, validates, and appends.
func (ex *Executor) execInsert(ctx context.Context, n *ast.InsertStmt) (*Payload, error) {
	sm, err := ex.asStoreMut()
	if err != nil {
		return nil, err
	}
	s, err := ex.schemaFor(ctx, n.TableName)
	if err != nil {
		return nil, err
	}

	rows, err := ex.insertSourceRows(ctx, n)
	if err != nil {
		return nil, err
	}

	out := make([]store.DataRow, 0, len(rows))
	for _, raw := range rows {
		vals, err := ex.alignInsertRow(ctx, s, n.Columns, raw)
		if err != nil {
			return nil, err
		}
		if !s.IsSchemaless() {
			if err := validate.Row(s, vals); err != nil {
				return nil, err
			}
			if err := validate.Unique(ctx, s, ex.Store, vals, nil); err != nil {
				return nil, err
			}
			if err := validate.ForeignKeys(ctx, s, ex.catalogLookup(ctx), vals); err != nil {
				return nil, err
			}
			out = append(out, store.NewVecRow(vals))
		} else {
			out = append(out, store.NewVecRow(vals))
		}
	}

	if _, err := sm.AppendData(ctx, n.TableName, out); err != nil {
		return nil, err
	}
	return &Payload{Kind: PayloadInsert, Count: len(out)}, nil
}

func (ex *Executor) insertSourceRows(ctx context.Context, n *ast.InsertStmt) ([][]value.Value, error) {
	switch src := n.Source.(type) {
	case ast.ValuesSetExpr:
		out := make([][]value.Value, len(src.Rows))
		ev := ex.evaluator(ctx, nil)
		for i, row := range src.Rows {
			vec := make([]value.Value, len(row))
			for j, e := range row {
				v, err := ev.Eval(e)
				if err != nil {
					return nil, err
				}
				vec[j] = v
			}
			out[i] = vec
		}
		return out, nil
	case ast.SelectSetExpr:
		q := ast.Query{Body: src}
		rows, _, err := ex.runQueryRows(ctx, &q, nil)
		return rows, err
	default:
		return nil, gerrors.NewStorageMsg("unreachable: unhandled INSERT source %T", n.Source)
	}
}

// alignInsertRow maps a source row's values onto the table's declared
// column order: an explicit `INSERT INTO t (b, a)`
// column list permutes the source row back to schema order, and any
// declared column missing from the list is filled from its DEFAULT
// expression or NULL.
func (ex *Executor) alignInsertRow(ctx context.Context, s *schema.Schema, cols []string, raw []value.Value) ([]value.Value, error) {
	if s.IsSchemaless() || len(cols) == 0 {
		return raw, nil
	}
	if len(cols) != len(raw) {
		return nil, gerrors.NewExecuteError(gerrors.WrongNumberOfValues, "column list has %d names but %d values were given", len(cols), len(raw))
	}
	out := make([]value.Value, len(s.ColumnDefs))
	filled := make([]bool, len(out))
	for i, name := range cols {
		idx := s.ColumnIndex(name)
		if idx < 0 {
			return nil, gerrors.NewExecuteError(gerrors.LackOfRequiredColumn, "unknown column %s.%s", s.TableName, name)
		}
		out[idx] = raw[i]
		filled[idx] = true
	}
	ev := ex.evaluator(ctx, nil)
	for i, col := range s.ColumnDefs {
		if filled[i] {
			continue
		}
		if col.Default != nil {
			v, err := ev.Eval(col.Default)
			if err != nil {
				return nil, err
			}
			out[i] = v
			continue
		}
		out[i] = value.NewNull()
	}
	return out, nil
}
