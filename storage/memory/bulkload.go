package memory

import (
	"context"

	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"golang.org/x/sync/errgroup"
)

// TableLoad is one table's full schema and row set for BulkLoad.
type TableLoad struct {
	Schema *schema.Schema
	Rows   []store.DataRow
}

// BulkLoad installs every table in loads concurrently, one goroutine per
// table, and rebuilds each table's indexes once its rows are in. This is
// the storage's own concurrency, never anything the executor orchestrates:
// a single statement's execution is still strictly sequential. It skips
// the referential-integrity and uniqueness checks a row-by-row INSERT
// would run, since it exists to restore a snapshot already known to be
// internally consistent.
func (s *Storage) BulkLoad(ctx context.Context, loads []TableLoad) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, l := range loads {
		l := l
		eg.Go(func() error {
			t := &table{
				schema:  l.Schema,
				rows:    make(map[string]store.RowEntry, len(l.Rows)),
				indexes: make(map[string]*indexData),
			}
			for _, row := range l.Rows {
				k, err := t.assignKey(row)
				if err != nil {
					return err
				}
				t.put(k, row)
			}
			if err := t.reindexAll(ctx); err != nil {
				return err
			}
			s.mu.Lock()
			s.tables[l.Schema.TableName] = t
			s.mu.Unlock()
			return nil
		})
	}
	return eg.Wait()
}
