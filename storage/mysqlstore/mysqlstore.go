// Package mysqlstore opens a storage/sqlbackend.Storage against MySQL via
// go-sql-driver/mysql, the same driver driver.mysqlBuildDSN targets.
package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/gluesql-go/gluesql/storage/sqlbackend"
)

// Config is the subset of driver.Config mysqlstore needs to build a DSN.
type Config struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
}

func dsn(c Config) string {
	if c.Port == 0 {
		c.Port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.DBName)
}

func quote(ident string) string { return "`" + ident + "`" }

func placeholder(i int) string { return "?" }

func version(ctx context.Context, db *sql.DB) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&v)
	return v, err
}

// Open connects to MySQL and wraps the connection as a store.Store.
func Open(ctx context.Context, c Config) (*sqlbackend.Storage, error) {
	db, err := sql.Open("mysql", dsn(c))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return sqlbackend.Open(ctx, db, sqlbackend.Dialect{
		Name:        "mysql",
		Quote:       quote,
		Placeholder: placeholder,
		Version:     version,
	})
}
