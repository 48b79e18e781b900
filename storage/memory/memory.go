// Package memory is the primary reference storage: every table, index, and
// row lives in a Go map behind a single sync.RWMutex, with no persistence
// across process restarts. It exists to exercise every store.Store
// capability against a backend simple enough to reason about, the same
// role an in-memory map-backed store plays in most embeddable-engine test
// suites.
package memory

import (
	"context"
	"sync"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// table is one schema plus its rows, keyed by value.Key.Bytes() for a
// total, content-addressed order that survives heterogeneous key kinds.
type table struct {
	schema  *schema.Schema
	order   []string // insertion order of keys, for a stable scan
	rows    map[string]store.RowEntry
	nextID  int64 // per-table Key::I64 counter for PK-less AppendData
	indexes map[string]*indexData
}

type indexData struct {
	def schema.SchemaIndex
	// entries maps a row's computed index key (by string form) to the set
	// of storage keys sharing it, since an index expression need not be
	// unique.
	entries map[string][]value.Key
}

// Storage is the in-memory store.Store/StoreMut/AlterTable/Index/IndexMut
// implementation. The zero value is not usable; construct with New.
type Storage struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func New() *Storage {
	return &Storage{tables: make(map[string]*table)}
}

func keyString(k value.Key) string { return string(k.Bytes()) }

func (s *Storage) FetchSchema(ctx context.Context, tableName string) (*schema.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil, nil
	}
	return t.schema, nil
}

func (s *Storage) FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*schema.Schema, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t.schema)
	}
	return out, nil
}

func (s *Storage) FetchData(ctx context.Context, tableName string, key value.Key) (*store.DataRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil, gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	entry, ok := t.rows[keyString(key)]
	if !ok {
		return nil, nil
	}
	row := entry.Row
	return &row, nil
}

func (s *Storage) ScanData(ctx context.Context, tableName string) (store.LazySequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil, gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	entries := make([]store.RowEntry, 0, len(t.order))
	for _, ks := range t.order {
		if e, ok := t.rows[ks]; ok {
			entries = append(entries, e)
		}
	}
	return store.NewSliceSequence(entries), nil
}

func (s *Storage) InsertSchema(ctx context.Context, sc *schema.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[sc.TableName] = &table{schema: sc, rows: make(map[string]store.RowEntry), indexes: make(map[string]*indexData)}
	return nil
}

func (s *Storage) DeleteSchema(ctx context.Context, tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, tableName)
	return nil
}

// AppendData assigns a key per row: the primary-key column's value for a
// PK'd table, or a monotonically increasing Key::I64 counter otherwise.
func (s *Storage) AppendData(ctx context.Context, tableName string, rows []store.DataRow) ([]value.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil, gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	keys := make([]value.Key, len(rows))
	for i, row := range rows {
		k, err := t.assignKey(row)
		if err != nil {
			return nil, err
		}
		t.put(k, row)
		keys[i] = k
	}
	if err := t.reindexAll(ctx); err != nil {
		return nil, err
	}
	return keys, nil
}

func (t *table) assignKey(row store.DataRow) (value.Key, error) {
	if !t.schema.IsSchemaless() {
		if idx := t.schema.PrimaryKeyColumn(); idx >= 0 && idx < len(row.Vec) {
			return value.NewKey(row.Vec[idx])
		}
	}
	id := t.nextID
	t.nextID++
	return value.MustKey(value.NewI64(id)), nil
}

func (t *table) put(k value.Key, row store.DataRow) {
	ks := keyString(k)
	if _, existed := t.rows[ks]; !existed {
		t.order = append(t.order, ks)
	}
	t.rows[ks] = store.RowEntry{Key: k, Row: row}
}

// InsertData is an upsert keyed by an already-known Key, used by UPDATE and
// by INSERT into a primary-keyed table.
func (s *Storage) InsertData(ctx context.Context, tableName string, rows []store.KeyedRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	for _, r := range rows {
		t.put(r.Key, r.Row)
	}
	return t.reindexAll(ctx)
}

func (s *Storage) DeleteData(ctx context.Context, tableName string, keys []value.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	for _, k := range keys {
		ks := keyString(k)
		delete(t.rows, ks)
	}
	t.compactOrder()
	return t.reindexAll(ctx)
}

func (t *table) compactOrder() {
	kept := t.order[:0]
	for _, ks := range t.order {
		if _, ok := t.rows[ks]; ok {
			kept = append(kept, ks)
		}
	}
	t.order = kept
}

func (s *Storage) RenameTable(ctx context.Context, tableName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	t.schema.TableName = newName
	delete(s.tables, tableName)
	s.tables[newName] = t
	return nil
}

func (s *Storage) RenameColumn(ctx context.Context, tableName, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	idx := t.schema.ColumnIndex(oldName)
	if idx < 0 {
		return gerrors.NewStorageMsg("column not found: %s.%s", tableName, oldName)
	}
	t.schema.ColumnDefs[idx].Name = newName
	return nil
}

func (s *Storage) AddColumn(ctx context.Context, tableName string, col schema.ColumnDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	t.schema.ColumnDefs = append(t.schema.ColumnDefs, col)
	def := value.NewNull()
	for ks, e := range t.rows {
		row := e.Row
		row.Vec = append(row.Vec, def)
		e.Row = row
		t.rows[ks] = e
	}
	return nil
}

func (s *Storage) DropColumn(ctx context.Context, tableName, column string, ifExists bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	idx := t.schema.ColumnIndex(column)
	if idx < 0 {
		if ifExists {
			return nil
		}
		return gerrors.NewStorageMsg("column not found: %s.%s", tableName, column)
	}
	t.schema.ColumnDefs = append(t.schema.ColumnDefs[:idx], t.schema.ColumnDefs[idx+1:]...)
	for ks, e := range t.rows {
		row := e.Row
		row.Vec = append(row.Vec[:idx], row.Vec[idx+1:]...)
		e.Row = row
		t.rows[ks] = e
	}
	return nil
}

// evalIndexExpr runs idx.Expr (always a CompoundIdentifier-rooted
// expression over exactly one table, per resolveIndexExpr) against one row.
func evalIndexExpr(ctx context.Context, t *table, e ast.Expr, row store.DataRow) (value.Value, error) {
	var columns []string
	if !t.schema.IsSchemaless() {
		columns = t.schema.ColumnNames()
	}
	rc := &evaluate.RowContext{Tables: map[string]evaluate.TableRow{t.schema.TableName: {Columns: columns, Row: row}}}
	ev := &evaluate.Evaluator{Ctx: ctx, Row: rc}
	return ev.Eval(e)
}

func (t *table) reindexAll(ctx context.Context) error {
	for _, idx := range t.indexes {
		if err := t.reindex(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) reindex(ctx context.Context, idx *indexData) error {
	idx.entries = make(map[string][]value.Key)
	for _, ks := range t.order {
		e, ok := t.rows[ks]
		if !ok {
			continue
		}
		v, err := evalIndexExpr(ctx, t, idx.def.Expr, e.Row)
		if err != nil {
			return err
		}
		idx.entries[v.String()] = append(idx.entries[v.String()], e.Key)
	}
	return nil
}

func (s *Storage) CreateIndex(ctx context.Context, tableName string, idx schema.SchemaIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	if _, exists := t.indexes[idx.Name]; exists {
		return gerrors.NewExecuteError(gerrors.IndexAlreadyExists, "index already exists: %s", idx.Name)
	}
	t.schema.Indexes = append(t.schema.Indexes, idx)
	data := &indexData{def: idx}
	if err := t.reindex(ctx, data); err != nil {
		return err
	}
	t.indexes[idx.Name] = data
	return nil
}

func (s *Storage) DropIndex(ctx context.Context, tableName, indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	if _, exists := t.indexes[indexName]; !exists {
		return gerrors.NewExecuteError(gerrors.IndexNotFound, "index not found: %s", indexName)
	}
	delete(t.indexes, indexName)
	for i, def := range t.schema.Indexes {
		if def.Name == indexName {
			t.schema.Indexes = append(t.schema.Indexes[:i], t.schema.Indexes[i+1:]...)
			break
		}
	}
	return nil
}

// ScanIndexedData walks index's entries whose computed value falls in
// [from, to], restricted to the rows still present in the table, in
// ascending or descending key order as asc asks.
func (s *Storage) ScanIndexedData(ctx context.Context, tableName, indexName string, from, to *value.Value, asc bool) (store.LazySequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil, gerrors.NewStorageMsg("table not found: %s", tableName)
	}
	idx, ok := t.indexes[indexName]
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.IndexNotFound, "index not found: %s", indexName)
	}

	buckets := make([]idxBucket, 0, len(idx.entries))
	for _, ks := range t.order {
		e, ok := t.rows[ks]
		if !ok {
			continue
		}
		v, err := evalIndexExpr(ctx, t, idx.def.Expr, e.Row)
		if err != nil {
			return nil, err
		}
		if from != nil {
			if ord, ok := value.Compare(v, *from); !ok || ord == value.Less {
				continue
			}
		}
		if to != nil {
			if ord, ok := value.Compare(v, *to); !ok || ord == value.Greater {
				continue
			}
		}
		buckets = append(buckets, idxBucket{v: v, keys: []value.Key{e.Key}})
	}
	sortBuckets(buckets, asc)

	entries := make([]store.RowEntry, 0, len(buckets))
	for _, b := range buckets {
		for _, k := range b.keys {
			if e, ok := t.rows[keyString(k)]; ok {
				entries = append(entries, e)
			}
		}
	}
	return store.NewSliceSequence(entries), nil
}

type idxBucket struct {
	v    value.Value
	keys []value.Key
}

func sortBuckets(bs []idxBucket, asc bool) {
	for i := 1; i < len(bs); i++ {
		for j := i; j > 0; j-- {
			ord, ok := value.Compare(bs[j-1].v, bs[j].v)
			if !ok {
				break
			}
			swap := ord == value.Greater
			if !asc {
				swap = ord == value.Less
			}
			if !swap {
				break
			}
			bs[j-1], bs[j] = bs[j], bs[j-1]
		}
	}
}
