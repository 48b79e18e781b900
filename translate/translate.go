// Package translate lowers a vitess-sqlparser parse tree into the engine's
// ast.Statement. vitess-sqlparser is the off-the-shelf SQL
// parser treats as an external collaborator; this package is the
// only place that imports it.
package translate

import (
	"fmt"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
)

// Statement translates one parsed vitess statement into ast.Statement.
func Statement(stmt vitess.Statement) (ast.Statement, error) {
	switch n := stmt.(type) {
	case *vitess.Select:
		q, err := query(n)
		if err != nil {
			return nil, err
		}
		return &ast.QueryStmt{Body: *q}, nil
	case *vitess.Union:
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "UNION/INTERSECT/EXCEPT are not supported")
	case *vitess.Insert:
		return insertStatement(n)
	case *vitess.Update:
		return updateStatement(n)
	case *vitess.Delete:
		return deleteStatement(n)
	case *vitess.DDL:
		return ddlStatement(n)
	case *vitess.Show:
		return showStatement(n)
	case *vitess.Begin:
		return &ast.StartTransactionStmt{}, nil
	case *vitess.Commit:
		return &ast.CommitStmt{}, nil
	case *vitess.Rollback:
		return &ast.RollbackStmt{}, nil
	default:
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "unsupported statement: %T", stmt)
	}
}

// Statements translates every top-level statement of a parsed
// `;`-separated script (glue.go's parseAll produces the input).
func Statements(stmts []vitess.Statement) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(stmts))
	for _, s := range stmts {
		lowered, err := Statement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func unsupportedExpr(format string, args ...any) error {
	return gerrors.NewTranslateError(gerrors.UnsupportedExpr, fmt.Sprintf(format, args...))
}
