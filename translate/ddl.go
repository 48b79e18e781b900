package translate

import (
	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
)

// ddlStatement lowers CREATE/ALTER/DROP/RENAME TABLE.
// The grammar this engine accepts does not expose granular ALTER TABLE
// clauses (ADD/DROP/RENAME COLUMN, ADD/DROP INDEX) as dedicated AST nodes;
// it reuses the CREATE-TABLE-shaped TableSpec the parser hands back for
// every ALTER, so ADD COLUMN is recognized by a TableSpec carrying exactly
// one column and no index changes, and anything else is rejected rather
// than guessed at.
func ddlStatement(n *vitess.DDL) (ast.Statement, error) {
	switch n.Action {
	case vitess.CreateStr:
		return createTableStatement(n)
	case vitess.DropStr:
		return &ast.DropTableStmt{TableNames: []string{n.Table.Name.String()}, IfExists: n.IfExists}, nil
	case vitess.RenameStr:
		return &ast.AlterTableStmt{
			TableName: n.Table.Name.String(),
			Operation: ast.RenameTable{NewName: n.NewName.Name.String()},
		}, nil
	case vitess.AlterStr:
		return alterTableStatement(n)
	case vitess.TruncateStr:
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "TRUNCATE TABLE is not supported")
	default:
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "unsupported DDL action: %s", n.Action)
	}
}

func createTableStatement(n *vitess.DDL) (ast.Statement, error) {
	if n.TableSpec == nil {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedStatement, "CREATE TABLE without a column list is not supported")
	}
	columns := make([]ast.ColumnDef, len(n.TableSpec.Columns))
	for i, c := range n.TableSpec.Columns {
		col, err := columnDef(c)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return &ast.CreateTableStmt{
		TableName:   n.Table.Name.String(),
		IfNotExists: n.IfExists,
		Columns:     columns,
	}, nil
}

func columnDef(c *vitess.ColumnDefinition) (ast.ColumnDef, error) {
	target, ok := schema.ParseTypeName(vitessColumnType(c.Type))
	if !ok {
		return ast.ColumnDef{}, gerrors.NewTranslateError(gerrors.UnsupportedDataType, "unsupported column type: %s", c.Type.Type)
	}
	col := ast.ColumnDef{
		Name:      c.Name.String(),
		DataType:  target,
		Nullable:  !bool(c.Type.NotNull),
		IsPrimary: c.Type.KeyOpt == vitess.ColKeyPrimary,
		Unique:    c.Type.KeyOpt == vitess.ColKeyPrimary || c.Type.KeyOpt == vitess.ColKeyUnique || c.Type.KeyOpt == vitess.ColKeyUniqueKey,
	}
	if c.Type.Comment != nil {
		comment := string(c.Type.Comment.Val)
		col.Comment = &comment
	}
	if c.Type.Default != nil {
		def, err := literalFromSQLVal(c.Type.Default)
		if err != nil {
			return ast.ColumnDef{}, err
		}
		col.Default = def
	}
	return col, nil
}

func vitessColumnType(t vitess.ColumnType) string {
	switch t.Type {
	case "int", "integer":
		return "INT"
	case "varchar", "char", "text", "tinytext", "mediumtext", "longtext":
		return "TEXT"
	case "double", "float":
		return "FLOAT"
	case "decimal", "numeric":
		return "DECIMAL"
	case "datetime", "timestamp":
		return "TIMESTAMP"
	case "date":
		return "DATE"
	case "time":
		return "TIME"
	case "bool", "boolean":
		return "BOOLEAN"
	case "blob", "binary", "varbinary":
		return "BYTEA"
	default:
		return t.Type
	}
}

func alterTableStatement(n *vitess.DDL) (ast.Statement, error) {
	if n.NewName.Name.String() != "" && n.NewName.Name.String() != n.Table.Name.String() {
		return &ast.AlterTableStmt{
			TableName: n.Table.Name.String(),
			Operation: ast.RenameTable{NewName: n.NewName.Name.String()},
		}, nil
	}
	if n.TableSpec == nil {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedAlterTableOperation, "ALTER TABLE clause could not be classified")
	}
	if len(n.TableSpec.Indexes) > 0 {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedAlterTableOperation, "ALTER TABLE ADD/DROP INDEX is not supported; use CREATE/DROP INDEX")
	}
	if len(n.TableSpec.Columns) != 1 {
		return nil, gerrors.NewTranslateError(gerrors.UnsupportedAlterTableOperation, "only single-column ALTER TABLE ADD COLUMN is supported")
	}
	col, err := columnDef(n.TableSpec.Columns[0])
	if err != nil {
		return nil, err
	}
	return &ast.AlterTableStmt{
		TableName: n.Table.Name.String(),
		Operation: ast.AddColumn{Column: col},
	}, nil
}
