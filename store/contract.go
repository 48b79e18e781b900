// Package store defines the capability traits the executor consumes. A
// storage is a composition of these interfaces; the executor never calls a
// capability a storage did not advertise (checked via the As* probe
// functions below).
package store

import (
	"context"

	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/value"
)

// Store is the mandatory read surface.
type Store interface {
	FetchSchema(ctx context.Context, table string) (*schema.Schema, error)
	FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error)
	FetchData(ctx context.Context, table string, key value.Key) (*DataRow, error)
	ScanData(ctx context.Context, table string) (LazySequence, error)
}

// StoreMut is the mandatory write surface.
type StoreMut interface {
	InsertSchema(ctx context.Context, s *schema.Schema) error
	DeleteSchema(ctx context.Context, table string) error
	// AppendData generates a key per row ( INSERT: primary-key
	// tables derive it from the pk column, otherwise a monotonically
	// increasing Key::I64 per-table counter) and returns the assigned keys.
	AppendData(ctx context.Context, table string, rows []DataRow) ([]value.Key, error)
	// InsertData is an upsert keyed by an already-known Key (used by
	// UPDATE, and by INSERT into a primary-keyed table).
	InsertData(ctx context.Context, table string, rows []KeyedRow) error
	DeleteData(ctx context.Context, table string, keys []value.Key) error
}

type KeyedRow struct {
	Key value.Key
	Row DataRow
}

// AlterTable is an optional capability.
type AlterTable interface {
	RenameTable(ctx context.Context, table, newName string) error
	RenameColumn(ctx context.Context, table, oldName, newName string) error
	AddColumn(ctx context.Context, table string, col schema.ColumnDef) error
	DropColumn(ctx context.Context, table, column string, ifExists bool) error
}

// Index is the optional read-side index capability.
type Index interface {
	// ScanIndexedData scans table via the named index, restricted to the
	// half-open/closed range [from, to] as applicable; either bound may be
	// nil for an unbounded side. order asc/desc controls emission order,
	// letting an ORDER BY-only index selection skip the sort.
	ScanIndexedData(ctx context.Context, table, index string, from, to *value.Value, asc bool) (LazySequence, error)
}

// IndexMut is the optional write-side index capability.
type IndexMut interface {
	CreateIndex(ctx context.Context, table string, idx schema.SchemaIndex) error
	DropIndex(ctx context.Context, table, index string) error
}

// Transaction is the optional transactional capability. A
// storage without it causes the façade to either no-op or error on
// BEGIN/COMMIT/ROLLBACK, never to synthesize transaction semantics itself.
type Transaction interface {
	Begin(ctx context.Context, autocommit bool) (Transaction, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// CustomFunction is the optional user-defined-SQL-function read capability.
type CustomFunction interface {
	FetchFunction(ctx context.Context, name string) (*UserFunction, error)
	FetchAllFunctions(ctx context.Context) ([]*UserFunction, error)
}

// CustomFunctionMut is the optional user-defined-SQL-function write capability.
type CustomFunctionMut interface {
	InsertFunction(ctx context.Context, fn *UserFunction) error
	DeleteFunction(ctx context.Context, name string) error
}

// UserFunction is a minimal named, stateless SQL expression function.
type UserFunction struct {
	Name   string
	Params []string
	Body   value.Value // placeholder body representation; nothing in execute evaluates it
}

// Metadata is the optional introspection capability backing SHOW TABLES,
// SHOW VERSION, and the GLUE_TABLES/GLUE_TABLE_COLUMNS virtual tables.
type Metadata interface {
	Version(ctx context.Context) (string, error)
	TableNames(ctx context.Context) ([]string, error)
	FunctionNames(ctx context.Context) ([]string, error)
}

// Capability probes let the executor adapt without panicking
// on a missing optional interface.
func AsAlterTable(s Store) (AlterTable, bool)         { v, ok := s.(AlterTable); return v, ok }
func AsIndex(s Store) (Index, bool)                   { v, ok := s.(Index); return v, ok }
func AsIndexMut(s Store) (IndexMut, bool)             { v, ok := s.(IndexMut); return v, ok }
func AsTransaction(s Store) (Transaction, bool)       { v, ok := s.(Transaction); return v, ok }
func AsMetadata(s Store) (Metadata, bool)             { v, ok := s.(Metadata); return v, ok }
func AsCustomFunction(s Store) (CustomFunction, bool) { v, ok := s.(CustomFunction); return v, ok }
func AsCustomFunctionMut(s Store) (CustomFunctionMut, bool) {
	v, ok := s.(CustomFunctionMut)
	return v, ok
}
