package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/querylens-labs/querylens/pkg/schema"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Format string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <database>",
		Short: "Show the schema of a SQLite database file",
		Long: `Inspect a SQLite database file and print its structure: tables,
columns, keys, relationships and row counts. CSV files are loaded as a
single-table preview.`,
		Example: `  # Show the schema as a table
  querylens inspect sales.db

  # Full schema as JSON
  querylens inspect sales.db --format json

  # CREATE TABLE-style text
  querylens inspect sales.db --format ddl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, ddl")

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	cc := NewCommandContext(cmd)
	sess := newSession(cc)
	defer func() { _ = sess.Close() }()

	sch, err := sess.LoadPath(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	w := cmd.OutOrStdout()
	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sch)
	case "ddl":
		_, _ = fmt.Fprint(w, sch.ToDDL())
		return nil
	default:
		renderSchema(w, sch)
		return nil
	}
}

func renderSchema(w io.Writer, sch *schema.Schema) {
	_, _ = fmt.Fprintf(w, "Database: %s (%d tables, %d bytes)\n\n",
		sch.DatabaseName, sch.TotalTables, sch.FileSizeBytes)

	for _, tbl := range sch.Tables {
		_, _ = fmt.Fprintf(w, "Table: %s (%d rows)\n", tbl.Name, tbl.RowCount)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Column", "Type", "Key", "Nullable", "References"})

		for _, col := range tbl.Columns {
			key := ""
			switch {
			case col.PrimaryKey:
				key = "PK"
			case col.ForeignKey:
				key = "FK"
			}
			nullable := "YES"
			if col.NotNull || col.PrimaryKey {
				nullable = "NO"
			}
			ref := ""
			if col.References != nil {
				ref = fmt.Sprintf("%s(%s)", col.References.Table, col.References.Column)
			}
			t.AppendRow(table.Row{col.Name, col.DeclaredType, key, nullable, ref})
		}
		t.Render()

		for _, rel := range tbl.Relationships {
			_, _ = fmt.Fprintf(w, "  %s.%s -> %s.%s (%s)\n",
				tbl.Name, rel.SourceColumn, rel.TargetTable, rel.TargetColumn, rel.Kind)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(sch.Tables) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables)")
	}
}
