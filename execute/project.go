package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/value"
)

// relShape is the statically-known output shape of one FROM-clause relation:
// its column names in declared order, and whether it is schemaless (rows
// come back as a value.Map rather than a positional vector).
type relShape struct {
	columns    []string
	schemaless bool
}

func (ex *Executor) relationShape(ctx context.Context, tf ast.TableFactor) (relShape, error) {
	if tf.Subquery != nil {
		_, labels, err := ex.queryShape(ctx, tf.Subquery)
		if err != nil {
			return relShape{}, err
		}
		return relShape{columns: labels}, nil
	}
	s, err := ex.schemaFor(ctx, tf.TableName)
	if err != nil {
		return relShape{}, err
	}
	if s.IsSchemaless() {
		return relShape{schemaless: true}, nil
	}
	return relShape{columns: s.ColumnNames()}, nil
}

// queryShape computes a query's output labels (and whether it is a
// SelectMap) without running it: every ingredient (declared columns,
// ExprItem labels) is known statically from schema alone (
// "Projection"), so a derived table's shape can be determined before any
// row is scanned.
func (ex *Executor) queryShape(ctx context.Context, q *ast.Query) (isMap bool, labels []string, err error) {
	sel, ok := q.Body.(ast.SelectSetExpr)
	if !ok {
		values := q.Body.(ast.ValuesSetExpr)
		n := 0
		if len(values.Rows) > 0 {
			n = len(values.Rows[0])
		}
		labels = make([]string, n)
		for i := range labels {
			labels[i] = columnLabel(i)
		}
		return false, labels, nil
	}

	order := tableOrder(&sel.Select.From)
	return ex.projectionShape(ctx, &sel.Select, order)
}

func columnLabel(i int) string {
	const letters = "column"
	return letters + itoa(i+1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

func tableOrder(from *ast.TableWithJoins) []string {
	order := []string{aliasOf(from.Relation)}
	for _, j := range from.Joins {
		order = append(order, aliasOf(j.Relation))
	}
	return order
}

func factorByAlias(from *ast.TableWithJoins, alias string) ast.TableFactor {
	if aliasOf(from.Relation) == alias {
		return from.Relation
	}
	for _, j := range from.Joins {
		if aliasOf(j.Relation) == alias {
			return j.Relation
		}
	}
	return ast.TableFactor{}
}

// projectRow is the Projection operator. isMap/labels are
// precomputed once per query via queryShape/projectionShape so every row
// of a given query takes the same shape.
func (ex *Executor) projectRow(ctx context.Context, row *evaluate.RowContext, items []ast.SelectItem, order []string, isMap bool) (vec []value.Value, m map[string]value.Value, err error) {
	ev := ex.evaluator(ctx, row)
	if isMap {
		m = make(map[string]value.Value)
		for _, item := range items {
			switch it := item.(type) {
			case ast.WildcardItem:
				for _, alias := range order {
					addTableToMap(m, row.Tables[alias])
				}
			case ast.QualifiedWildcard:
				addTableToMap(m, row.Tables[it.TableAlias])
			case ast.ExprItem:
				v, err := ev.Eval(it.Expr)
				if err != nil {
					return nil, nil, err
				}
				m[it.Label] = v
			}
		}
		return nil, m, nil
	}

	for _, item := range items {
		switch it := item.(type) {
		case ast.WildcardItem:
			for _, alias := range order {
				vec = append(vec, vecFromTable(row.Tables[alias])...)
			}
		case ast.QualifiedWildcard:
			vec = append(vec, vecFromTable(row.Tables[it.TableAlias])...)
		case ast.ExprItem:
			v, err := ev.Eval(it.Expr)
			if err != nil {
				return nil, nil, err
			}
			vec = append(vec, v)
		}
	}
	return vec, nil, nil
}

func addTableToMap(dst map[string]value.Value, tr evaluate.TableRow) {
	if tr.Row.IsMap {
		for k, v := range tr.Row.Values {
			dst[k] = v
		}
		return
	}
	for _, col := range tr.Columns {
		if v, ok := tr.Row.Get(col, tr.Columns); ok {
			dst[col] = v
		}
	}
}

func vecFromTable(tr evaluate.TableRow) []value.Value {
	out := make([]value.Value, 0, len(tr.Columns))
	for _, col := range tr.Columns {
		if v, ok := tr.Row.Get(col, tr.Columns); ok {
			out = append(out, v)
		}
	}
	return out
}

// projectionShape decides once per query whether its output is a SelectMap
// (any wildcard touches a schemaless relation) and, when it is not, the
// positional labels every row's Vec will line up with.
func (ex *Executor) projectionShape(ctx context.Context, sel *ast.Select, order []string) (isMap bool, labels []string, err error) {
	for _, item := range sel.Projection {
		switch it := item.(type) {
		case ast.WildcardItem:
			for _, a := range order {
				shape, err := ex.relationShape(ctx, factorByAlias(&sel.From, a))
				if err != nil {
					return false, nil, err
				}
				if shape.schemaless {
					isMap = true
					continue
				}
				labels = append(labels, shape.columns...)
			}
		case ast.QualifiedWildcard:
			shape, err := ex.relationShape(ctx, factorByAlias(&sel.From, it.TableAlias))
			if err != nil {
				return false, nil, err
			}
			if shape.schemaless {
				isMap = true
			} else {
				labels = append(labels, shape.columns...)
			}
		case ast.ExprItem:
			labels = append(labels, it.Label)
		}
	}
	return isMap, labels, nil
}
