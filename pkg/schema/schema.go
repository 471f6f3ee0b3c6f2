// Package schema extracts the full relational structure of a loaded
// SQLite database: tables, columns, keys, relationships, row counts
// and sample rows.
package schema

import (
	"fmt"
	"strings"
)

// RelationshipOneToMany is the only relationship kind derivable from a
// single foreign-key column.
const RelationshipOneToMany = "one-to-many"

// Schema is the root structural description of a loaded database.
type Schema struct {
	DatabaseName  string  `json:"database_name"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	TotalTables   int     `json:"total_tables"`
	Tables        []Table `json:"tables"`
}

// Table describes one user table in catalog order.
type Table struct {
	Name          string         `json:"name"`
	RowCount      int64          `json:"row_count"`
	Columns       []Column       `json:"columns"`
	SampleData    [][]any        `json:"sample_data"`
	Relationships []Relationship `json:"relationships"`
}

// Column describes one column in declared order.
type Column struct {
	Name         string     `json:"name"`
	DeclaredType string     `json:"declared_type"`
	PrimaryKey   bool       `json:"is_primary_key"`
	ForeignKey   bool       `json:"is_foreign_key"`
	NotNull      bool       `json:"is_not_null"`
	DefaultValue *string    `json:"default_value,omitempty"`
	References   *Reference `json:"references,omitempty"`
}

// Reference names the target of a foreign-key column.
type Reference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Relationship is derived from a foreign-key column, one entry per FK.
type Relationship struct {
	Kind         string `json:"kind"`
	SourceColumn string `json:"source_column"`
	TargetTable  string `json:"target_table"`
	TargetColumn string `json:"target_column"`
}

// Table returns the named table, or nil.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// ToDDL renders the schema as CREATE TABLE-style text. The output is
// grounding context for the SQL-assist collaborator, not executable DDL.
func (s *Schema) ToDDL() string {
	var b strings.Builder
	for ti, t := range s.Tables {
		if ti > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
		for ci, c := range t.Columns {
			fmt.Fprintf(&b, "  %s %s", c.Name, c.DeclaredType)
			if c.PrimaryKey {
				b.WriteString(" PRIMARY KEY")
			}
			if c.NotNull && !c.PrimaryKey {
				b.WriteString(" NOT NULL")
			}
			if c.DefaultValue != nil {
				fmt.Fprintf(&b, " DEFAULT %s", *c.DefaultValue)
			}
			if c.References != nil {
				fmt.Fprintf(&b, " REFERENCES %s(%s)", c.References.Table, c.References.Column)
			}
			if ci < len(t.Columns)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "); -- %d rows\n", t.RowCount)
	}
	return b.String()
}
