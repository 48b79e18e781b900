// Package schema implements the table's declared structure:
// column definitions, indexes, foreign keys, and the DDL round-trip used by
// storages that persist schema as text.
package schema

import (
	"github.com/gluesql-go/gluesql/ast"
	"github.com/gluesql-go/gluesql/value"
)

type Schema struct {
	TableName   string
	ColumnDefs  []ColumnDef // nil = schemaless table, rows are value.Map
	Indexes     []SchemaIndex
	Engine      *string
	ForeignKeys []ForeignKey
	Comment     *string
}

func (s *Schema) IsSchemaless() bool { return s.ColumnDefs == nil }

// PrimaryKeyColumn returns the single primary-key column's index into
// ColumnDefs, or -1 if none is declared.
func (s *Schema) PrimaryKeyColumn() int {
	for i, c := range s.ColumnDefs {
		if c.Unique != nil && c.Unique.IsPrimary {
			return i
		}
	}
	return -1
}

func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.ColumnDefs))
	for i, c := range s.ColumnDefs {
		names[i] = c.Name
	}
	return names
}

func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.ColumnDefs {
		if c.Name == name {
			return i
		}
	}
	return -1
}

type ColumnDef struct {
	Name     string
	DataType value.DataType
	Nullable bool
	Default  ast.Expr // must be IsStateless
	Unique   *UniqueOption
	Comment  *string
}

type UniqueOption struct {
	IsPrimary bool
}

// SchemaIndex restricts its Expr to the shapes allowed by: a
// single identifier, a binary op over identifiers/literals, a unary op, a
// cast, or a nested combination of these.
type SchemaIndex struct {
	Name  string
	Expr  ast.Expr
	Order IndexOrder
}

type IndexOrder int

const (
	Asc IndexOrder = iota
	Desc
)

type ForeignKey struct {
	ReferencingColumn string
	ReferencedTable   string
	ReferencedColumn  string
	OnDelete          ReferentialAction
	OnUpdate          ReferentialAction
}

type ReferentialAction int

const (
	NoAction ReferentialAction = iota
	Cascade
	SetNull
)

// ValidateIndexExpr enforces SchemaIndex's restriction on index
// expressions: every node must be an identifier, a literal, a binary or
// unary op, a cast, or a nested expression; anything else is rejected.
func ValidateIndexExpr(e ast.Expr) bool {
	ok := true
	ast.Walk(e, func(n ast.Expr) bool {
		switch n.(type) {
		case *ast.Identifier, *ast.CompoundIdentifier, *ast.Literal, *ast.TypedStringExpr,
			*ast.BinaryOpExpr, *ast.UnaryOpExpr, *ast.CastExpr, *ast.NestedExpr:
			return true
		}
		ok = false
		return false
	})
	return ok
}
