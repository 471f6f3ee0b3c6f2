package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <database> [SQL]",
		Short: "Run a read-only SQL query against a database file",
		Long: `Execute a SELECT query against a SQLite database file and print the
result. Only read statements are allowed; execution is bounded by the
configured timeout and row cap.

When invoked without SQL on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  querylens query sales.db "SELECT * FROM orders LIMIT 5"

  # Read SQL from a file
  querylens query sales.db --input report.sql

  # Pipe SQL on stdin
  echo "SELECT COUNT(*) FROM orders" | querylens query sales.db

  # Output as JSON
  querylens query sales.db "SELECT * FROM orders" --format json

  # Interactive mode
  querylens query sales.db`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cc := NewCommandContext(cmd)
	sess := newSession(cc)
	defer func() { _ = sess.Close() }()

	if _, err := sess.LoadPath(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	var sqlQuery string
	switch {
	case len(args) > 1:
		sqlQuery = args[1]
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, cc, sess, opts)
	}

	if strings.TrimSpace(sqlQuery) == "" {
		return fmt.Errorf("no SQL to execute")
	}

	result, err := sess.Execute(cmd.Context(), sqlQuery)
	if err != nil {
		return err
	}
	return renderResult(cmd.OutOrStdout(), result, opts.Format)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
