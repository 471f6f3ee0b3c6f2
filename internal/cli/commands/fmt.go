package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querylens-labs/querylens/pkg/sqlformat"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Input string
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt [SQL]",
		Short: "Pretty-print a SQL statement",
		Long: `Format a SQL statement for readability: major clauses on their own
lines, joins and boolean operators indented.`,
		Example: `  querylens fmt "SELECT a, b FROM t WHERE a > 1 AND b < 2"

  # Format a file
  querylens fmt --input query.sql

  # Format stdin
  cat query.sql | querylens fmt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = args[0]
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	default:
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	}

	if strings.TrimSpace(sqlQuery) == "" {
		return fmt.Errorf("no SQL to format")
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), sqlformat.Format(sqlQuery))
	return nil
}
