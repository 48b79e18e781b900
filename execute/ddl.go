package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

func toSchemaColumn(c ast.ColumnDef) schema.ColumnDef {
	col := schema.ColumnDef{
		Name:     c.Name,
		DataType: c.DataType,
		Nullable: c.Nullable,
		Default:  c.Default,
		Comment:  c.Comment,
	}
	if c.Unique || c.IsPrimary {
		col.Unique = &schema.UniqueOption{IsPrimary: c.IsPrimary}
	}
	return col
}

// kindToDataType approximates a runtime Value.Kind as the closest declared
// column type, used only by CREATE TABLE AS SELECT, which has no column
// type list to read and must infer one from its first result row. An empty
// result set falls back to TEXT for every column, since no value was ever
// observed to infer from.
func kindToDataType(k value.Kind) value.DataType {
	switch k {
	case value.Bool:
		return value.TBoolean
	case value.I8:
		return value.TInt8
	case value.I16:
		return value.TInt16
	case value.I32:
		return value.TInt32
	case value.I64:
		return value.TInt64
	case value.I128:
		return value.TInt128
	case value.U8:
		return value.TUint8
	case value.U16:
		return value.TUint16
	case value.U32:
		return value.TUint32
	case value.U64:
		return value.TUint64
	case value.U128:
		return value.TUint128
	case value.F32:
		return value.TFloat32
	case value.F64:
		return value.TFloat64
	case value.Decimal:
		return value.TDecimal
	case value.Bytea:
		return value.TBytea
	case value.Date:
		return value.TDate
	case value.Time:
		return value.TTime
	case value.Timestamp:
		return value.TTimestamp
	case value.Uuid:
		return value.TUuid
	case value.Inet:
		return value.TInet
	default:
		return value.TText
	}
}

// execCreateTable is the CREATE TABLE operator, including the
// CREATE TABLE AS SELECT form: the SELECT runs first so its result shape
// becomes the new table's schema.
func (ex *Executor) execCreateTable(ctx context.Context, n *ast.CreateTableStmt) (*Payload, error) {
	existing, err := ex.Store.FetchSchema(ctx, n.TableName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if n.IfNotExists {
			return &Payload{Kind: PayloadCreate}, nil
		}
		return nil, gerrors.NewExecuteError(gerrors.SchemaAlreadyExists, "table already exists: %s", n.TableName)
	}

	sm, err := ex.asStoreMut()
	if err != nil {
		return nil, err
	}

	var (
		cols []schema.ColumnDef
		rows [][]value.Value
	)
	if n.Source != nil {
		srcRows, labels, err := ex.runQueryRows(ctx, n.Source, nil)
		if err != nil {
			return nil, err
		}
		rows = srcRows
		cols = make([]schema.ColumnDef, len(labels))
		for i, l := range labels {
			dt := value.TText
			if len(rows) > 0 {
				dt = kindToDataType(rows[0][i].Kind)
			}
			cols[i] = schema.ColumnDef{Name: l, DataType: dt, Nullable: true}
		}
	} else {
		cols = make([]schema.ColumnDef, len(n.Columns))
		for i, c := range n.Columns {
			cols[i] = toSchemaColumn(c)
		}
	}

	s := &schema.Schema{TableName: n.TableName, ColumnDefs: cols, Engine: n.Engine, Comment: n.Comment}
	if len(n.Columns) == 0 && n.Source == nil {
		s.ColumnDefs = nil // explicit schemaless CREATE TABLE (no column list)
	}
	if err := sm.InsertSchema(ctx, s); err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		dataRows := make([]store.DataRow, len(rows))
		for i, r := range rows {
			dataRows[i] = store.NewVecRow(r)
		}
		if _, err := sm.AppendData(ctx, n.TableName, dataRows); err != nil {
			return nil, err
		}
	}
	return &Payload{Kind: PayloadCreate}, nil
}

// execDropTable is the DROP TABLE operator: a table other
// tables still reference via a foreign key cannot be dropped unless CASCADE
// also drops every referencing table's schema (not just rows — see
// DESIGN.md on the scope of CASCADE here).
func (ex *Executor) execDropTable(ctx context.Context, n *ast.DropTableStmt) (*Payload, error) {
	sm, err := ex.asStoreMut()
	if err != nil {
		return nil, err
	}
	var validateDropFn func(ctx context.Context, table string) error
	all, err := ex.Store.FetchAllSchemas(ctx)
	if err != nil {
		return nil, err
	}
	validateDropFn = func(ctx context.Context, table string) error {
		if referencingAny(table, all) && !n.Cascade {
			return gerrors.NewExecuteError(gerrors.ForeignKeyViolation, "cannot drop table %s: still referenced by a foreign key", table)
		}
		return nil
	}

	count := 0
	for _, table := range n.TableNames {
		s, err := ex.Store.FetchSchema(ctx, table)
		if err != nil {
			return nil, err
		}
		if s == nil {
			if n.IfExists {
				continue
			}
			return nil, gerrors.NewExecuteError(gerrors.TableNotFoundExec, "table not found: %s", table)
		}
		if err := validateDropFn(ctx, table); err != nil {
			return nil, err
		}
		if err := sm.DeleteSchema(ctx, table); err != nil {
			return nil, err
		}
		count++
	}
	return &Payload{Kind: PayloadDropTable, Count: count}, nil
}

func referencingAny(table string, all []*schema.Schema) bool {
	for _, s := range all {
		for _, fk := range s.ForeignKeys {
			if fk.ReferencedTable == table {
				return true
			}
		}
	}
	return false
}

func (ex *Executor) execAlterTable(ctx context.Context, n *ast.AlterTableStmt) (*Payload, error) {
	alt, ok := store.AsAlterTable(ex.Store)
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.StorageCapabilityNotSupported, "storage does not support ALTER TABLE")
	}
	switch op := n.Operation.(type) {
	case ast.RenameTable:
		if err := alt.RenameTable(ctx, n.TableName, op.NewName); err != nil {
			return nil, err
		}
	case ast.RenameColumn:
		if err := alt.RenameColumn(ctx, n.TableName, op.OldName, op.NewName); err != nil {
			return nil, err
		}
	case ast.AddColumn:
		if err := alt.AddColumn(ctx, n.TableName, toSchemaColumn(op.Column)); err != nil {
			return nil, err
		}
	case ast.DropColumn:
		if err := alt.DropColumn(ctx, n.TableName, op.Name, op.IfExists); err != nil {
			return nil, err
		}
	default:
		return nil, gerrors.NewExecuteError(gerrors.UnsupportedAlterTableOperationExec, "unsupported ALTER TABLE operation: %T", op)
	}
	return &Payload{Kind: PayloadAlterTable}, nil
}

func (ex *Executor) execCreateIndex(ctx context.Context, n *ast.CreateIndexStmt) (*Payload, error) {
	im, ok := store.AsIndexMut(ex.Store)
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.StorageCapabilityNotSupported, "storage does not support indexes")
	}
	if !schema.ValidateIndexExpr(n.Expr) {
		return nil, gerrors.NewExecuteError(gerrors.UnsupportedAlterTableOperationExec, "index expression may only use columns, literals, unary/binary operators, CAST and parentheses")
	}
	order := schema.Asc
	if n.Order == ast.IndexDesc {
		order = schema.Desc
	}
	idx := schema.SchemaIndex{Name: n.IndexName, Expr: resolveIndexExpr(n.TableName, n.Expr), Order: order}
	if err := im.CreateIndex(ctx, n.TableName, idx); err != nil {
		return nil, err
	}
	return &Payload{Kind: PayloadCreateIndex}, nil
}

// resolveIndexExpr tags every bare column reference in an index expression
// with table, the only relation ValidateIndexExpr's restricted grammar ever
// lets it name, so a storage can evaluate the stored expression the same
// way it evaluates any other row expression.
func resolveIndexExpr(table string, e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Identifier:
		return &ast.CompoundIdentifier{Table: table, Column: n.Name}
	case *ast.BinaryOpExpr:
		return &ast.BinaryOpExpr{Op: n.Op, Left: resolveIndexExpr(table, n.Left), Right: resolveIndexExpr(table, n.Right)}
	case *ast.UnaryOpExpr:
		return &ast.UnaryOpExpr{Op: n.Op, Operand: resolveIndexExpr(table, n.Operand)}
	case *ast.CastExpr:
		return &ast.CastExpr{Operand: resolveIndexExpr(table, n.Operand), Target: n.Target}
	default:
		return e
	}
}

func (ex *Executor) execDropIndex(ctx context.Context, n *ast.DropIndexStmt) (*Payload, error) {
	im, ok := store.AsIndexMut(ex.Store)
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.StorageCapabilityNotSupported, "storage does not support indexes")
	}
	if err := im.DropIndex(ctx, n.TableName, n.IndexName); err != nil {
		return nil, err
	}
	return &Payload{Kind: PayloadDropIndex}, nil
}
