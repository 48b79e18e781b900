package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// lookupColumn scans every relation carried by rc for a column named col,
// used for USING/NATURAL joins and the HashJoin fast path, where the
// planner names a bare column rather than a qualified one.
func lookupColumn(rc *evaluate.RowContext, col string) (value.Value, bool) {
	for _, tr := range rc.Tables {
		if v, ok := tr.Row.Get(col, tr.Columns); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

func valueEqual(a, b value.Value) bool {
	eq, ok := value.Equal(a, b)
	return ok && eq
}

// visibleColumns collects every column name carried by rc, across all of
// its joined relations, for the NATURAL JOIN column-intersection rule.
func visibleColumns(rc *evaluate.RowContext) map[string]struct{} {
	cols := make(map[string]struct{})
	for _, tr := range rc.Tables {
		for _, c := range tr.Columns {
			cols[c] = struct{}{}
		}
	}
	return cols
}

// commonColumns returns the column names present on both sides of a
// NATURAL JOIN, the set it must match row pairs on.
func commonColumns(l, r *evaluate.RowContext) []string {
	left := visibleColumns(l)
	right := visibleColumns(r)
	var common []string
	for c := range left {
		if _, ok := right[c]; ok {
			common = append(common, c)
		}
	}
	return common
}

func mergeRows(l, r *evaluate.RowContext, outer *evaluate.RowContext) *evaluate.RowContext {
	tables := make(map[string]evaluate.TableRow, len(l.Tables)+len(r.Tables))
	for k, v := range l.Tables {
		tables[k] = v
	}
	for k, v := range r.Tables {
		tables[k] = v
	}
	return &evaluate.RowContext{Tables: tables, Outer: outer}
}

func nullDataRow(columns []string) store.DataRow {
	vs := make([]value.Value, len(columns))
	for i := range vs {
		vs[i] = value.NewNull()
	}
	return store.NewVecRow(vs)
}

// nullTableRowFor builds alias's NULL-filled counterpart for an unmatched
// outer-join side, using the first sample row's declared columns so a
// later Get(column) still resolves (to Null) rather than finding no table
// at all.
func nullTableRowFor(rows []*evaluate.RowContext, alias string) *evaluate.RowContext {
	tr, ok := sampleTableRow(rows, alias)
	if !ok {
		return &evaluate.RowContext{Tables: map[string]evaluate.TableRow{}}
	}
	return &evaluate.RowContext{Tables: map[string]evaluate.TableRow{
		alias: {Columns: tr.Columns, Row: nullDataRow(tr.Columns)},
	}}
}

func nullTableRowForAll(rows []*evaluate.RowContext) *evaluate.RowContext {
	tables := map[string]evaluate.TableRow{}
	if len(rows) > 0 {
		for alias, tr := range rows[0].Tables {
			tables[alias] = evaluate.TableRow{Columns: tr.Columns, Row: nullDataRow(tr.Columns)}
		}
	}
	return &evaluate.RowContext{Tables: tables}
}

func sampleTableRow(rows []*evaluate.RowContext, alias string) (evaluate.TableRow, bool) {
	if len(rows) == 0 {
		return evaluate.TableRow{}, false
	}
	tr, ok := rows[0].Tables[alias]
	return tr, ok
}

// joinIter is the Join operator. It materializes both sides —
// the build side to index by the hash-join key (or, for a non-equi join, to
// support the outer-join "did this row ever match" bookkeeping) and the
// probe side because re-iterating a LazySequence means re-scanning it
// through the storage anyway. A genuinely streaming nested-loop join (one
// fresh inner scan per outer row) is possible for a two-base-table join but
// complicates mixing in derived tables and multi-way joins for a gain the
// in-memory reference storage has no way to exercise; see DESIGN.md.
func (ex *Executor) joinIter(ctx context.Context, leftSrc RowIter, j ast.Join, outer *evaluate.RowContext) (RowIter, error) {
	leftRows, err := drainRows(ctx, leftSrc)
	if err != nil {
		return nil, err
	}
	rightIter, err := ex.scanTable(ctx, j.Relation, outer)
	if err != nil {
		return nil, err
	}
	rightRows, err := drainRows(ctx, rightIter)
	if err != nil {
		return nil, err
	}

	var hashIndex map[string][]int
	if j.HashJoin != nil {
		hashIndex = make(map[string][]int, len(rightRows))
		for i, r := range rightRows {
			if v, ok := lookupColumn(r, j.HashJoin.RightColumn); ok && !v.IsNull() {
				hashIndex[v.String()] = append(hashIndex[v.String()], i)
			}
		}
	}

	candidates := func(l *evaluate.RowContext) []int {
		if hashIndex == nil {
			all := make([]int, len(rightRows))
			for i := range all {
				all[i] = i
			}
			return all
		}
		v, ok := lookupColumn(l, j.HashJoin.LeftColumn)
		if !ok || v.IsNull() {
			return nil
		}
		return hashIndex[v.String()]
	}

	matches := func(l, r *evaluate.RowContext) (bool, error) {
		switch c := j.Constraint.(type) {
		case ast.OnConstraint:
			return ex.evalBool(ctx, c.Expr, mergeRows(l, r, outer))
		case ast.UsingConstraint:
			for _, col := range c.Columns {
				lv, lok := lookupColumn(l, col)
				rv, rok := lookupColumn(r, col)
				if !lok || !rok || !valueEqual(lv, rv) {
					return false, nil
				}
			}
			return true, nil
		case ast.NaturalConstraint:
			for _, col := range commonColumns(l, r) {
				lv, lok := lookupColumn(l, col)
				rv, rok := lookupColumn(r, col)
				if !lok || !rok || !valueEqual(lv, rv) {
					return false, nil
				}
			}
			return true, nil
		case ast.CrossConstraint:
			return true, nil
		default:
			return true, nil
		}
	}

	nullRight := nullTableRowFor(rightRows, aliasOf(j.Relation))

	var out []*evaluate.RowContext
	rightMatched := make([]bool, len(rightRows))
	for _, l := range leftRows {
		found := false
		for _, ri := range candidates(l) {
			ok, err := matches(l, rightRows[ri])
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			found = true
			rightMatched[ri] = true
			out = append(out, mergeRows(l, rightRows[ri], outer))
		}
		if !found && (j.JoinOperator == ast.JoinLeft || j.JoinOperator == ast.JoinFull) {
			out = append(out, mergeRows(l, nullRight, outer))
		}
	}

	if j.JoinOperator == ast.JoinRight || j.JoinOperator == ast.JoinFull {
		nullLeft := nullTableRowForAll(leftRows)
		for ri, r := range rightRows {
			if !rightMatched[ri] {
				out = append(out, mergeRows(nullLeft, r, outer))
			}
		}
	}

	return newSliceRowIter(out), nil
}
