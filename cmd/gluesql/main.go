// Command gluesql is a demo REPL-and-script runner over the engine: point it
// at a storage backend and either pipe a `;`-separated script into it or run
// it interactively, the same two modes cli.go's single Action offered for
// sqldef's apply-a-schema-file workflow.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/gluesql-go/gluesql"
	"github.com/gluesql-go/gluesql/execute"
	"github.com/gluesql-go/gluesql/storage/memory"
	"github.com/gluesql-go/gluesql/storage/mysqlstore"
	"github.com/gluesql-go/gluesql/storage/postgresstore"
	"github.com/gluesql-go/gluesql/storage/sqlitestore"
	"github.com/gluesql-go/gluesql/store"
)

// config is the on-disk TOML counterpart to ExecOptions plus the storage
// selection execute.ExecOptions itself stays silent on.
type config struct {
	Storage    string    `toml:"storage"` // "memory" (default), "sqlite", "mysql", "postgres"
	Path       string    `toml:"path"`    // sqlite file path, or ":memory:"
	DSN        dsnConfig `toml:"dsn"`
	Autocommit bool      `toml:"autocommit"`
	Targets    []string  `toml:"targets"`
}

type dsnConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
}

func defaultConfig() config {
	return config{Storage: "memory", Autocommit: true}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func openStorage(ctx context.Context, cfg config) (store.Store, error) {
	switch cfg.Storage {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlitestore.Open(ctx, path)
	case "mysql":
		return mysqlstore.Open(ctx, mysqlstore.Config{
			Host: cfg.DSN.Host, Port: cfg.DSN.Port, User: cfg.DSN.User,
			Password: cfg.DSN.Password, DBName: cfg.DSN.DBName,
		})
	case "postgres":
		return postgresstore.Open(ctx, postgresstore.Config{
			Host: cfg.DSN.Host, Port: cfg.DSN.Port, User: cfg.DSN.User,
			Password: cfg.DSN.Password, DBName: cfg.DSN.DBName,
		})
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Storage)
	}
}

func main() {
	var configPath, scriptPath string

	root := &cobra.Command{
		Use:   "gluesql",
		Short: "Run SQL against a pluggable storage backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			st, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			g := gluesql.NewWithOptions(st, execute.ExecOptions{Autocommit: cfg.Autocommit, Targets: cfg.Targets})

			if scriptPath != "" {
				buf, err := os.ReadFile(scriptPath)
				if err != nil {
					return err
				}
				payloads, err := g.ExecuteScript(ctx, string(buf))
				for _, p := range payloads {
					printPayload(p)
				}
				return err
			}
			return repl(ctx, g)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file path")
	root.Flags().StringVarP(&scriptPath, "file", "f", "", "run a `;`-separated SQL script instead of the REPL")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func repl(ctx context.Context, g *gluesql.Glue) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "gluesql> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprint(os.Stderr, "gluesql> ")
			continue
		}
		payload, err := g.Execute(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		} else {
			printPayload(payload)
		}
		fmt.Fprint(os.Stderr, "gluesql> ")
	}
	return scanner.Err()
}

func printPayload(p *execute.Payload) {
	if p == nil {
		return
	}
	switch p.Kind {
	case execute.PayloadSelect:
		fmt.Println(p.Labels)
		for _, row := range p.Rows {
			fmt.Println(row)
		}
	case execute.PayloadSelectMap:
		for _, row := range p.MapRows {
			fmt.Println(row)
		}
	default:
		fmt.Printf("%+v\n", p)
	}
}
