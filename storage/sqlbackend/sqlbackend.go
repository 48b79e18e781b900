// Package sqlbackend is a store.Store implementation over any database/sql
// driver. It never speaks a dialect's DDL dialect directly: every logical
// table is materialized as one physical key/value table plus a row in a
// shared catalog table, so the same code drives MySQL, PostgreSQL, and
// SQLite once storage/mysqlstore, storage/postgresstore, and
// storage/sqlitestore each supply a Dialect and an open *sql.DB, the same
// division of labor driver.Database draws between its dialect-agnostic
// DumpDDLs/RunDDLs and its per-dialect mysqlTableNames/postgresTableNames.
package sqlbackend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// Dialect isolates the handful of statements that differ across backends.
type Dialect struct {
	Name        string
	Quote       func(ident string) string
	Placeholder func(i int) string
	Version     func(ctx context.Context, db *sql.DB) (string, error)
}

// Storage is a store.Store/store.StoreMut/store.Metadata implementation
// backed by db. It does not implement store.Transaction: unlike
// storage/memory's full-table snapshot, buffering an external database's
// tables in Go to support Begin/Commit/Rollback would defeat the purpose of
// delegating storage to it, so BEGIN/COMMIT/ROLLBACK simply error as
// unsupported against this backend (see DESIGN.md).
type Storage struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex // serializes the read-then-increment sequence step
}

// Open wraps an already-opened db and ensures the shared catalog tables
// exist. Callers obtain db themselves (storage/mysqlstore etc. do this via
// sql.Open with their own driver name), mirroring driver.NewDatabase's own
// sql.Open call but leaving dialect selection to the caller instead of a
// config.DbType switch.
func Open(ctx context.Context, db *sql.DB, dialect Dialect) (*Storage, error) {
	s := &Storage{db: db, dialect: dialect}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (table_name TEXT PRIMARY KEY, definition TEXT NOT NULL)`,
		s.q("gluesql_schema"))); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (table_name TEXT PRIMARY KEY, next_val BIGINT NOT NULL)`,
		s.q("gluesql_sequences"))); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) q(ident string) string { return s.dialect.Quote(ident) }
func (s *Storage) p(i int) string        { return s.dialect.Placeholder(i) }

func (s *Storage) dataTable(table string) string {
	return s.q("gluesql_data_" + strings.ToLower(table))
}

func (s *Storage) FetchSchema(ctx context.Context, table string) (*schema.Schema, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT definition FROM %s WHERE table_name = %s", s.q("gluesql_schema"), s.p(1)), table)
	var def string
	if err := row.Scan(&def); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var sc schema.Schema
	if err := json.Unmarshal([]byte(def), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Storage) FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT definition FROM %s", s.q("gluesql_schema")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*schema.Schema
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, err
		}
		var sc schema.Schema
		if err := json.Unmarshal([]byte(def), &sc); err != nil {
			return nil, err
		}
		out = append(out, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out, nil
}

func (s *Storage) FetchData(ctx context.Context, table string, key value.Key) (*store.DataRow, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT payload FROM %s WHERE key_bytes = %s", s.dataTable(table), s.p(1)), key.Bytes())
	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var dr store.DataRow
	if err := json.Unmarshal([]byte(payload), &dr); err != nil {
		return nil, err
	}
	return &dr, nil
}

func (s *Storage) ScanData(ctx context.Context, table string) (store.LazySequence, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT key_json, payload FROM %s", s.dataTable(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []store.RowEntry
	for rows.Next() {
		var keyJSON, payload string
		if err := rows.Scan(&keyJSON, &payload); err != nil {
			return nil, err
		}
		entry, err := decodeEntry(keyJSON, payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.NewSliceSequence(entries), nil
}

func decodeEntry(keyJSON, payload string) (store.RowEntry, error) {
	var kv value.Value
	if err := json.Unmarshal([]byte(keyJSON), &kv); err != nil {
		return store.RowEntry{}, err
	}
	k, err := value.NewKey(kv)
	if err != nil {
		return store.RowEntry{}, err
	}
	var dr store.DataRow
	if err := json.Unmarshal([]byte(payload), &dr); err != nil {
		return store.RowEntry{}, err
	}
	return store.RowEntry{Key: k, Row: dr}, nil
}

func (s *Storage) InsertSchema(ctx context.Context, sc *schema.Schema) error {
	def, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (table_name, definition) VALUES (%s, %s)", s.q("gluesql_schema"), s.p(1), s.p(2)),
		sc.TableName, string(def)); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE %s (key_bytes VARBINARY(255) PRIMARY KEY, key_json TEXT NOT NULL, payload TEXT NOT NULL)`,
		s.dataTable(sc.TableName))); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (table_name, next_val) VALUES (%s, 1)", s.q("gluesql_sequences"), s.p(1)), sc.TableName)
	return err
}

func (s *Storage) DeleteSchema(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", s.dataTable(table))); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"DELETE FROM %s WHERE table_name = %s", s.q("gluesql_schema"), s.p(1)), table); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"DELETE FROM %s WHERE table_name = %s", s.q("gluesql_sequences"), s.p(1)), table)
	return err
}

// nextSeq mirrors storage/memory's per-table monotonic counter, implemented
// here as a read-then-write against gluesql_sequences rather than an
// in-process int64 field, since the counter must survive process restarts
// the same way the rest of the table does.
func (s *Storage) nextSeq(ctx context.Context, table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT next_val FROM %s WHERE table_name = %s", s.q("gluesql_sequences"), s.p(1)), table)
	var next int64
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET next_val = %s WHERE table_name = %s", s.q("gluesql_sequences"), s.p(1), s.p(2)),
		next+1, table); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Storage) assignKey(ctx context.Context, sc *schema.Schema, row store.DataRow) (value.Key, error) {
	if pk := sc.PrimaryKeyColumn(); pk >= 0 && !row.IsMap {
		return value.NewKey(row.Vec[pk])
	}
	next, err := s.nextSeq(ctx, sc.TableName)
	if err != nil {
		return value.Key{}, err
	}
	return value.MustKey(value.NewI64(next)), nil
}

func (s *Storage) put(ctx context.Context, table string, k value.Key, row store.DataRow) error {
	keyJSON, err := json.Marshal(k.Value())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"DELETE FROM %s WHERE key_bytes = %s", s.dataTable(table), s.p(1)), k.Bytes()); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (key_bytes, key_json, payload) VALUES (%s, %s, %s)",
		s.dataTable(table), s.p(1), s.p(2), s.p(3)), k.Bytes(), string(keyJSON), string(payload))
	return err
}

func (s *Storage) AppendData(ctx context.Context, table string, rows []store.DataRow) ([]value.Key, error) {
	sc, err := s.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, gerrors.NewStorageMsg("unreachable: AppendData against unknown table %s", table)
	}
	keys := make([]value.Key, len(rows))
	for i, row := range rows {
		k, err := s.assignKey(ctx, sc, row)
		if err != nil {
			return nil, err
		}
		if err := s.put(ctx, table, k, row); err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

func (s *Storage) InsertData(ctx context.Context, table string, rows []store.KeyedRow) error {
	for _, r := range rows {
		if err := s.put(ctx, table, r.Key, r.Row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) DeleteData(ctx context.Context, table string, keys []value.Key) error {
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE key_bytes = %s", s.dataTable(table), s.p(1)), k.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Version(ctx context.Context) (string, error) {
	return s.dialect.Version(ctx, s.db)
}

func (s *Storage) TableNames(ctx context.Context) ([]string, error) {
	all, err := s.FetchAllSchemas(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	for i, sc := range all {
		names[i] = sc.TableName
	}
	return names, nil
}

// FunctionNames always returns empty: sqlbackend does not implement
// store.CustomFunction.
func (s *Storage) FunctionNames(ctx context.Context) ([]string, error) { return nil, nil }
