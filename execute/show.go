package execute

import (
	"context"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/schema"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

var dataTypeNames = map[value.DataType]string{
	value.TBoolean: "BOOLEAN", value.TInt8: "INT8", value.TInt16: "INT16",
	value.TInt32: "INT32", value.TInt64: "INT", value.TInt128: "INT128",
	value.TUint8: "UINT8", value.TUint16: "UINT16", value.TUint32: "UINT32",
	value.TUint64: "UINT64", value.TUint128: "UINT128",
	value.TFloat32: "FLOAT32", value.TFloat64: "FLOAT", value.TDecimal: "DECIMAL",
	value.TText: "TEXT", value.TBytea: "BYTEA", value.TDate: "DATE",
	value.TTime: "TIME", value.TTimestamp: "TIMESTAMP", value.TInterval: "INTERVAL",
	value.TUuid: "UUID", value.TInet: "INET", value.TMap: "MAP", value.TList: "LIST",
	value.TPoint: "POINT",
}

func dataTypeName(t value.DataType) string {
	if n, ok := dataTypeNames[t]; ok {
		return n
	}
	return "TEXT"
}

func (ex *Executor) execShowColumns(ctx context.Context, n *ast.ShowColumnsStmt) (*Payload, error) {
	s, err := ex.schemaFor(ctx, n.TableName)
	if err != nil {
		return nil, err
	}
	if s.IsSchemaless() {
		return &Payload{Kind: PayloadShowColumns}, nil
	}
	cols := make([]ColumnInfo, len(s.ColumnDefs))
	for i, c := range s.ColumnDefs {
		cols[i] = ColumnInfo{Name: c.Name, DataType: dataTypeName(c.DataType)}
	}
	return &Payload{Kind: PayloadShowColumns, Columns: cols}, nil
}

func (ex *Executor) execShowIndexes(ctx context.Context, n *ast.ShowIndexesStmt) (*Payload, error) {
	s, err := ex.schemaFor(ctx, n.TableName)
	if err != nil {
		return nil, err
	}
	labels := []string{"TABLE_NAME", "INDEX_NAME", "ORDER"}
	rows := make([][]value.Value, len(s.Indexes))
	for i, idx := range s.Indexes {
		order := "ASC"
		if idx.Order == schema.Desc {
			order = "DESC"
		}
		rows[i] = []value.Value{value.NewStr(s.TableName), value.NewStr(idx.Name), value.NewStr(order)}
	}
	return &Payload{Kind: PayloadSelect, Labels: labels, Rows: rows, Count: len(rows)}, nil
}

func (ex *Executor) execShowVariable(ctx context.Context, n *ast.ShowVariableStmt) (*Payload, error) {
	meta, ok := store.AsMetadata(ex.Store)
	if !ok {
		return nil, gerrors.NewExecuteError(gerrors.StorageCapabilityNotSupported, "storage does not support SHOW VERSION/TABLES/FUNCTIONS")
	}
	switch n.Variable {
	case ast.ShowVariableVersion:
		v, err := meta.Version(ctx)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: PayloadShowVariable, ShowVariable: ShowVariableValue{Version: v}}, nil
	case ast.ShowVariableTables:
		names, err := meta.TableNames(ctx)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: PayloadShowVariable, ShowVariable: ShowVariableValue{Tables: ex.restrictToTargets(names)}}, nil
	case ast.ShowVariableFunctions:
		names, err := meta.FunctionNames(ctx)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: PayloadShowVariable, ShowVariable: ShowVariableValue{Functions: names}}, nil
	default:
		return nil, gerrors.NewStorageMsg("unreachable: unhandled SHOW variable %d", n.Variable)
	}
}

// restrictToTargets filters the table list of SHOW TABLES and of the
// GLUE_TABLES/GLUE_TABLE_COLUMNS tables to ExecOptions.Targets when set
// (ambient "Configuration" surface: ExecOptions.Targets restricts table
// visibility the same way the conventional GeneratorConfig scopes its run).
func (ex *Executor) restrictToTargets(names []string) []string {
	if len(ex.Opts.Targets) == 0 {
		return names
	}
	allowed := make(map[string]bool, len(ex.Opts.Targets))
	for _, t := range ex.Opts.Targets {
		allowed[t] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if allowed[n] {
			out = append(out, n)
		}
	}
	return out
}
