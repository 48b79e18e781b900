// Package postgresstore opens a storage/sqlbackend.Storage against
// PostgreSQL via lib/pq, the driver driver.postgresBuildDSN targets.
package postgresstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/gluesql-go/gluesql/storage/sqlbackend"
)

type Config struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
	SSLMode  string
}

func dsn(c Config) string {
	if c.Port == 0 {
		c.Port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

func quote(ident string) string { return `"` + ident + `"` }

func placeholder(i int) string { return fmt.Sprintf("$%d", i) }

func version(ctx context.Context, db *sql.DB) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, "SHOW server_version").Scan(&v)
	return v, err
}

// Open connects to PostgreSQL and wraps the connection as a store.Store.
func Open(ctx context.Context, c Config) (*sqlbackend.Storage, error) {
	db, err := sql.Open("postgres", dsn(c))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return sqlbackend.Open(ctx, db, sqlbackend.Dialect{
		Name:        "postgres",
		Quote:       quote,
		Placeholder: placeholder,
		Version:     version,
	})
}
