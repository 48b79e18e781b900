package translate

import (
	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
)

func insertStatement(n *vitess.Insert) (*ast.InsertStmt, error) {
	if n.Action == vitess.ReplaceStr {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "REPLACE INTO is not supported")
	}
	if len(n.OnDup) > 0 {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "INSERT... ON DUPLICATE KEY UPDATE is not supported")
	}

	columns := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		columns[i] = c.String()
	}

	source, err := insertSource(n.Rows)
	if err != nil {
		return nil, err
	}

	return &ast.InsertStmt{
		TableName: n.Table.Name.String(),
		Columns:   columns,
		Source:    source,
	}, nil
}

func insertSource(rows vitess.InsertRows) (ast.SetExpr, error) {
	switch r := rows.(type) {
	case vitess.Values:
		values := make([][]ast.Expr, len(r))
		for i, tuple := range r {
			row := make([]ast.Expr, len(tuple))
			for j, item := range tuple {
				lowered, err := Expr(item)
				if err != nil {
					return nil, err
				}
				row[j] = lowered
			}
			values[i] = row
		}
		return ast.ValuesSetExpr{Rows: values}, nil
	case *vitess.Select:
		sel, err := selectStatement(r)
		if err != nil {
			return nil, err
		}
		return ast.SelectSetExpr{Select: *sel}, nil
	default:
		return nil, unsupportedExpr("unsupported INSERT source: %T", rows)
	}
}

func updateStatement(n *vitess.Update) (*ast.UpdateStmt, error) {
	table, err := singleUpdateTarget(n.TableExprs)
	if err != nil {
		return nil, err
	}

	assignments := make([]ast.Assignment, len(n.Exprs))
	for i, e := range n.Exprs {
		value, err := Expr(e.Expr)
		if err != nil {
			return nil, err
		}
		assignments[i] = ast.Assignment{Column: e.Name.Name.String(), Value: value}
	}

	stmt := &ast.UpdateStmt{TableName: table, Assignments: assignments}
	if n.Where != nil {
		cond, err := Expr(n.Where.Expr)
		if err != nil {
			return nil, err
		}
		stmt.Selection = cond
	}
	return stmt, nil
}

func deleteStatement(n *vitess.Delete) (*ast.DeleteStmt, error) {
	table, err := singleUpdateTarget(n.TableExprs)
	if err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStmt{TableName: table}
	if n.Where != nil {
		cond, err := Expr(n.Where.Expr)
		if err != nil {
			return nil, err
		}
		stmt.Selection = cond
	}
	return stmt, nil
}

// singleUpdateTarget rejects multi-table UPDATE/DELETE ( scopes
// both statements to exactly one target table).
func singleUpdateTarget(exprs vitess.TableExprs) (string, error) {
	if len(exprs) != 1 {
		return "", gerrors.NewTranslateError(gerrors.UnsupportedStatement, "multi-table UPDATE/DELETE is not supported")
	}
	aliased, ok := exprs[0].(*vitess.AliasedTableExpr)
	if !ok {
		return "", unsupportedExpr("unsupported UPDATE/DELETE target: %T", exprs[0])
	}
	name, ok := aliased.Expr.(vitess.TableName)
	if !ok {
		return "", unsupportedExpr("UPDATE/DELETE target must be a table name")
	}
	return name.Name.String(), nil
}
