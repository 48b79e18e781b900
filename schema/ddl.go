package schema

import (
	"fmt"
	"strings"

	"github.com/gluesql-go/gluesql/ast"
)

// ToDDL renders s as one `CREATE TABLE...` statement followed by one
// `CREATE INDEX` statement per index. The translate package reads back
// only part of this text: it has no lowering for CREATE INDEX and ignores
// the FOREIGN KEY clauses, ENGINE and the table COMMENT, so running the
// output back through translate -> plan -> execute does not in general
// rebuild a schema equal to s.
func (s *Schema) ToDDL() []string {
	var stmts []string
	stmts = append(stmts, s.createTableDDL())
	for _, idx := range s.Indexes {
		order := "ASC"
		if idx.Order == Desc {
			order = "DESC"
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX %s ON %s (%s %s);",
			idx.Name, s.TableName, ast.CanonicalSQL(idx.Expr), order,
		))
	}
	return stmts
}

func (s *Schema) createTableDDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", s.TableName)
	for i, c := range s.ColumnDefs {
		b.WriteString(" ")
		b.WriteString(c.Name)
		b.WriteString(" ")
		b.WriteString(TypeName(c.DataType))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.Default != nil {
			b.WriteString(" DEFAULT ")
			b.WriteString(ast.CanonicalSQL(c.Default))
		}
		if c.Unique != nil {
			if c.Unique.IsPrimary {
				b.WriteString(" PRIMARY KEY")
			} else {
				b.WriteString(" UNIQUE")
			}
		}
		if c.Comment != nil {
			fmt.Fprintf(&b, " COMMENT '%s'", *c.Comment)
		}
		if i < len(s.ColumnDefs)-1 || len(s.ForeignKeys) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	for i, fk := range s.ForeignKeys {
		fmt.Fprintf(&b, " FOREIGN KEY (%s) REFERENCES %s(%s)", fk.ReferencingColumn, fk.ReferencedTable, fk.ReferencedColumn)
		b.WriteString(onActionSQL(fk))
		if i < len(s.ForeignKeys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	if s.Engine != nil {
		fmt.Fprintf(&b, " ENGINE=%s", *s.Engine)
	}
	if s.Comment != nil {
		fmt.Fprintf(&b, " COMMENT '%s'", *s.Comment)
	}
	b.WriteString(";")
	return b.String()
}

func onActionSQL(fk ForeignKey) string {
	var b strings.Builder
	if fk.OnDelete != NoAction {
		fmt.Fprintf(&b, " ON DELETE %s", actionName(fk.OnDelete))
	}
	if fk.OnUpdate != NoAction {
		fmt.Fprintf(&b, " ON UPDATE %s", actionName(fk.OnUpdate))
	}
	return b.String()
}

func actionName(a ReferentialAction) string {
	switch a {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	default:
		return "NO ACTION"
	}
}
