// Package sqlitestore opens a storage/sqlbackend.Storage against SQLite via
// modernc.org/sqlite, a pure-Go driver requiring no cgo toolchain.
package sqlitestore

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/gluesql-go/gluesql/storage/sqlbackend"
)

func quote(ident string) string { return `"` + ident + `"` }

func placeholder(i int) string { return "?" }

func version(ctx context.Context, db *sql.DB) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&v)
	return v, err
}

// Open opens path (":memory:" for a transient, in-process database) and
// wraps the connection as a store.Store.
func Open(ctx context.Context, path string) (*sqlbackend.Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return sqlbackend.Open(ctx, db, sqlbackend.Dialect{
		Name:        "sqlite",
		Quote:       quote,
		Placeholder: placeholder,
		Version:     version,
	})
}
