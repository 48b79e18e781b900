// Package gluesql is an embeddable SQL engine over a pluggable storage
// contract: plug in any store.Store/StoreMut implementation (storage/memory,
// storage/sqlbackend, or your own) and run SQL text straight through
// parse → translate → plan → execute.
package gluesql

import (
	"context"
	"strings"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/execute"
	"github.com/gluesql-go/gluesql/plan"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/translate"
)

// Glue binds one storage to the execution pipeline. It carries no state of
// its own beyond the Executor: concurrent use across goroutines is only as
// safe as the underlying store.Store implementation.
type Glue struct {
	ex *execute.Executor
}

// New wires st into a Glue handle with the default options (autocommit on,
// every table visible to GLUE_TABLES/GLUE_TABLE_COLUMNS).
func New(st store.Store) *Glue {
	return &Glue{ex: execute.New(st, execute.DefaultExecOptions())}
}

// NewWithOptions is New, with explicit ExecOptions (see
// execute.ParseExecOptions for loading them from a YAML document).
func NewWithOptions(st store.Store, opts execute.ExecOptions) *Glue {
	return &Glue{ex: execute.New(st, opts)}
}

// Store returns the storage currently backing g. While an explicit
// transaction is open (after BEGIN), this is the transactional
// snapshot, not the storage New was given.
func (g *Glue) Store() store.Store {
	return g.ex.Store
}

// Execute parses sql as a single statement, plans it against the current
// storage's schema catalog, and runs it. Use ExecuteScript for a
// `;`-separated multi-statement string.
func (g *Glue) Execute(ctx context.Context, sql string) (*execute.Payload, error) {
	stmt, err := parseOne(sql)
	if err != nil {
		return nil, err
	}
	return g.ExecuteStmt(ctx, stmt)
}

// ExecuteScript runs every statement in sql in order, stopping at the first
// error. It returns every payload produced before that point.
func (g *Glue) ExecuteScript(ctx context.Context, sql string) ([]*execute.Payload, error) {
	vstmts, err := parseAll(sql)
	if err != nil {
		return nil, err
	}
	stmts, err := translate.Statements(vstmts)
	if err != nil {
		return nil, err
	}
	out := make([]*execute.Payload, 0, len(stmts))
	for _, stmt := range stmts {
		p, err := g.execPlanned(ctx, stmt)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ExecuteStmt runs an already-translated ast.Statement, skipping the
// parse/translate stages; useful for a caller building statements
// programmatically rather than from SQL text.
func (g *Glue) ExecuteStmt(ctx context.Context, stmt ast.Statement) (*execute.Payload, error) {
	return g.execPlanned(ctx, stmt)
}

func (g *Glue) execPlanned(ctx context.Context, stmt ast.Statement) (*execute.Payload, error) {
	schemas, err := g.ex.Store.FetchAllSchemas(ctx)
	if err != nil {
		return nil, err
	}
	planned, err := plan.Statement(stmt, plan.NewCatalog(schemas))
	if err != nil {
		return nil, err
	}
	return g.ex.Exec(ctx, planned)
}

// Begin opens an explicit transaction on the current storage, erroring if
// one is already open or the storage has no store.Transaction capability.
func (g *Glue) Begin(ctx context.Context) error {
	_, err := g.Execute(ctx, "BEGIN")
	return err
}

// Commit closes an explicit transaction opened with Begin, persisting its
// statements to the base storage.
func (g *Glue) Commit(ctx context.Context) error {
	_, err := g.Execute(ctx, "COMMIT")
	return err
}

// Rollback closes an explicit transaction opened with Begin, discarding
// every statement run since Begin.
func (g *Glue) Rollback(ctx context.Context) error {
	_, err := g.Execute(ctx, "ROLLBACK")
	return err
}

// Transaction runs fn inside an explicit BEGIN/COMMIT, rolling back and
// propagating fn's error if it returns one.
func (g *Glue) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.Begin(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if rbErr := g.Rollback(ctx); rbErr != nil {
			return rbErr
		}
		return err
	}
	return g.Commit(ctx)
}

func parseOne(sql string) (ast.Statement, error) {
	vstmt, err := vitess.Parse(sql)
	if err != nil {
		return nil, err
	}
	return translate.Statement(vstmt)
}

// parseAll splits a `;`-separated script and parses each piece, skipping
// whitespace-only fragments (a trailing `;` is common and not an error).
func parseAll(sql string) ([]vitess.Statement, error) {
	pieces, err := vitess.SplitStatementToPieces(sql)
	if err != nil {
		return nil, err
	}
	out := make([]vitess.Statement, 0, len(pieces))
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		stmt, err := vitess.Parse(piece)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}
