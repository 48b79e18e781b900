package store

import "github.com/gluesql-go/gluesql/value"

// DataRow is a stored row in either of its two shapes: a
// positional Vec for a schema'd table, or a Map for a schemaless one. The
// executor normalizes projection across both.
type DataRow struct {
	Values map[string]value.Value // set when Map
	Vec    []value.Value          // set when Vec
	IsMap  bool
}

func NewVecRow(vs []value.Value) DataRow {
	return DataRow{Vec: vs}
}

func NewMapRow(m map[string]value.Value) DataRow {
	return DataRow{Values: m, IsMap: true}
}

// Get fetches a column's value either by position (columnNames[i] == name)
// for a Vec row, or by key for a Map row.
func (r DataRow) Get(name string, columnNames []string) (value.Value, bool) {
	if r.IsMap {
		v, ok := r.Values[name]
		return v, ok
	}
	for i, n := range columnNames {
		if n == name && i < len(r.Vec) {
			return r.Vec[i], true
		}
	}
	return value.Value{}, false
}

func (r DataRow) Clone() DataRow {
	if r.IsMap {
		m := make(map[string]value.Value, len(r.Values))
		for k, v := range r.Values {
			m[k] = v
		}
		return DataRow{Values: m, IsMap: true}
	}
	vec := make([]value.Value, len(r.Vec))
	copy(vec, r.Vec)
	return DataRow{Vec: vec}
}
