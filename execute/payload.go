package execute

import "github.com/gluesql-go/gluesql/value"

// PayloadKind tags which variant of Payload is populated. Payload is a
// single struct rather than a Go sum type so a caller can switch on Kind
// without a type assertion per variant.
type PayloadKind int

const (
	PayloadCreate PayloadKind = iota
	PayloadDropTable
	PayloadAlterTable
	PayloadCreateIndex
	PayloadDropIndex
	PayloadInsert
	PayloadUpdate
	PayloadDelete
	PayloadSelect
	PayloadSelectMap
	PayloadShowColumns
	PayloadShowVariable
	PayloadStartTransaction
	PayloadCommit
	PayloadRollback
)

// ShowVariableValue carries the concrete answer for SHOW VERSION/TABLES/FUNCTIONS.
type ShowVariableValue struct {
	Version   string
	Tables    []string
	Functions []string
}

// Payload is the uniform result envelope every executed statement returns.
// Only the fields relevant to Kind are populated.
type Payload struct {
	Kind PayloadKind

	// Row counts: DropTable(n tables), Insert/Update/Delete(n rows).
	Count int

	// Select: labeled rows from a schema'd projection.
	Labels []string
	Rows   [][]value.Value

	// SelectMap: schemaless projection, one map per row.
	MapRows []map[string]value.Value

	// ShowColumns: (name, dataType) pairs.
	Columns []ColumnInfo

	ShowVariable ShowVariableValue
}

type ColumnInfo struct {
	Name     string
	DataType string
}
