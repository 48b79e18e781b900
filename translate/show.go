package translate

import (
	"strings"

	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
)

// showStatement lowers SHOW TABLES / SHOW COLUMNS / SHOW INDEXES / SHOW
// VERSION / SHOW FUNCTIONS. The parser's
// Show node carries a loosely-typed Type string rather than a closed set of
// variants, so this is the one place in translate that pattern-matches on
// raw text instead of a concrete struct shape.
func showStatement(n *vitess.Show) (ast.Statement, error) {
	kind := strings.ToLower(n.Type)
	switch {
	case kind == "tables":
		return &ast.ShowVariableStmt{Variable: ast.ShowVariableTables}, nil
	case kind == "version":
		return &ast.ShowVariableStmt{Variable: ast.ShowVariableVersion}, nil
	case kind == "function status" || kind == "functions":
		return &ast.ShowVariableStmt{Variable: ast.ShowVariableFunctions}, nil
	case strings.HasPrefix(kind, "columns"):
		table := n.OnTable.Name.String()
		if table == "" {
			return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "SHOW COLUMNS requires FROM/IN table")
		}
		return &ast.ShowColumnsStmt{TableName: table}, nil
	case strings.HasPrefix(kind, "index"), strings.HasPrefix(kind, "keys"):
		table := n.OnTable.Name.String()
		if table == "" {
			return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "SHOW INDEXES requires FROM/IN table")
		}
		return &ast.ShowIndexesStmt{TableName: table}, nil
	default:
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "unsupported SHOW statement: %s", n.Type)
	}
}
