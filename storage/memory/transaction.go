package memory

import (
	"context"

	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

const version = "gluesql-go memory 0.1.0"

// Begin snapshots every table under a read lock and hands the copy back as
// a new Transaction/Store pair; the caller runs statements against the
// snapshot and only writes them back to s via Commit.
func (s *Storage) Begin(ctx context.Context, autocommit bool) (store.Transaction, error) {
	s.mu.RLock()
	clone := s.cloneLocked()
	s.mu.RUnlock()
	return &txStorage{Storage: clone, parent: s}, nil
}

type txStorage struct {
	*Storage
	parent *Storage
}

// Commit replaces parent's table set with the snapshot's, wholesale: every
// statement since Begin already validated against the snapshot, so there
// is nothing left to re-check here.
func (t *txStorage) Commit(ctx context.Context) error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.tables = t.Storage.tables
	return nil
}

// Rollback simply discards the snapshot; parent was never touched.
func (t *txStorage) Rollback(ctx context.Context) error {
	return nil
}

func (s *Storage) cloneLocked() *Storage {
	clone := New()
	for name, t := range s.tables {
		sc := *t.schema
		sc.ColumnDefs = append([]schema.ColumnDef(nil), t.schema.ColumnDefs...)
		sc.Indexes = append([]schema.SchemaIndex(nil), t.schema.Indexes...)
		nt := &table{
			schema:  &sc,
			order:   append([]string(nil), t.order...),
			rows:    make(map[string]store.RowEntry, len(t.rows)),
			nextID:  t.nextID,
			indexes: make(map[string]*indexData, len(t.indexes)),
		}
		for k, v := range t.rows {
			v.Row = v.Row.Clone()
			nt.rows[k] = v
		}
		for idxName, idx := range t.indexes {
			entries := make(map[string][]value.Key, len(idx.entries))
			for ek, ev := range idx.entries {
				entries[ek] = append([]value.Key(nil), ev...)
			}
			nt.indexes[idxName] = &indexData{def: idx.def, entries: entries}
		}
		clone.tables[name] = nt
	}
	return clone
}

func (s *Storage) Version(ctx context.Context) (string, error) {
	return version, nil
}

func (s *Storage) TableNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	return names, nil
}

// FunctionNames always returns empty: memory does not implement
// store.CustomFunction, so no user-defined function is ever registered.
func (s *Storage) FunctionNames(ctx context.Context) ([]string, error) {
	return nil, nil
}
