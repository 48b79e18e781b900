// Package ast defines the engine's typed statement/expression tree.
// Statements are value types owned by the current execution; they hold no
// references into any storage.
package ast

import "github.com/gluesql-go/gluesql/value"

// Statement is the root of every executable unit.
type Statement interface{ isStatement() }

type (
	QueryStmt struct {
		Body Query
	}

	InsertStmt struct {
		TableName string
		Columns   []string
		Source    SetExpr // Values or a Select used as INSERT... SELECT
	}

	UpdateStmt struct {
		TableName   string
		Assignments []Assignment
		Selection   Expr // nil = no WHERE
	}

	DeleteStmt struct {
		TableName string
		Selection Expr
	}

	CreateTableStmt struct {
		TableName   string
		IfNotExists bool
		Columns     []ColumnDef
		Source      *Query // CREATE TABLE AS SELECT
		Engine      *string
		Comment     *string
	}

	CreateIndexStmt struct {
		TableName string
		IndexName string
		Expr      Expr
		Order     IndexOrder
	}

	AlterTableStmt struct {
		TableName string
		Operation AlterOperation
	}

	DropTableStmt struct {
		TableNames []string
		IfExists   bool
		Cascade    bool
	}

	DropIndexStmt struct {
		TableName string
		IndexName string
	}

	ShowColumnsStmt  struct{ TableName string }
	ShowIndexesStmt  struct{ TableName string }
	ShowVariableStmt struct{ Variable ShowVariableKind }

	StartTransactionStmt struct{}
	CommitStmt           struct{}
	RollbackStmt         struct{}
)

func (*QueryStmt) isStatement()            {}
func (*InsertStmt) isStatement()           {}
func (*UpdateStmt) isStatement()           {}
func (*DeleteStmt) isStatement()           {}
func (*CreateTableStmt) isStatement()      {}
func (*CreateIndexStmt) isStatement()      {}
func (*AlterTableStmt) isStatement()       {}
func (*DropTableStmt) isStatement()        {}
func (*DropIndexStmt) isStatement()        {}
func (*ShowColumnsStmt) isStatement()      {}
func (*ShowIndexesStmt) isStatement()      {}
func (*ShowVariableStmt) isStatement()     {}
func (*StartTransactionStmt) isStatement() {}
func (*CommitStmt) isStatement()           {}
func (*RollbackStmt) isStatement()         {}

type ShowVariableKind int

const (
	ShowVariableVersion ShowVariableKind = iota
	ShowVariableTables
	ShowVariableFunctions
)

// Assignment is one `col = expr` pair of an UPDATE statement.
type Assignment struct {
	Column string
	Value  Expr
}

// ColumnDef is the translate-stage column declaration before it becomes a
// schema.ColumnDef (it still holds raw default/unique markers as AST nodes,
// since defaults may reference no columns but are still Exprs).
type ColumnDef struct {
	Name      string
	DataType  value.DataType
	Nullable  bool
	Default   Expr // nil = no default
	Unique    bool
	IsPrimary bool
	Comment   *string
}

type IndexOrder int

const (
	IndexAsc IndexOrder = iota
	IndexDesc
)

// AlterOperation is the closed set of ALTER TABLE sub-operations.
type AlterOperation interface{ isAlterOperation() }

type (
	RenameTable  struct{ NewName string }
	RenameColumn struct {
		OldName string
		NewName string
	}
	AddColumn  struct{ Column ColumnDef }
	DropColumn struct {
		Name     string
		IfExists bool
	}
)

func (RenameTable) isAlterOperation()  {}
func (RenameColumn) isAlterOperation() {}
func (AddColumn) isAlterOperation()    {}
func (DropColumn) isAlterOperation()   {}
