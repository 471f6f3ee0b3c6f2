package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/pkg/schema"
	"github.com/querylens-labs/querylens/pkg/sqlformat"
)

func runQueryREPL(cmd *cobra.Command, cc *CommandContext, sess *session.Session, opts *QueryOptions) error {
	ctx := cmd.Context()

	// History lives next to the query history database.
	historyFile := ""
	if cc.Cfg.History.Path != "" {
		dir := filepath.Dir(cc.Cfg.History.Path)
		if err := os.MkdirAll(dir, 0750); err == nil {
			historyFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "querylens> ",
		HistoryFile:     historyFile,
		AutoComplete:    newTableCompleter(sess),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sch := sess.Schema()
	name := "(none)"
	if sch != nil {
		name = sch.DatabaseName
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryLens REPL (database: %s)\n", name)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("querylens> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, sess, line, opts); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("      ...> ")
			continue
		}
		rl.SetPrompt("querylens> ")

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		result, err := sess.Execute(ctx, query)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		} else if err := renderResult(cmd.OutOrStdout(), result, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleDotCommand(cmd *cobra.Command, sess *session.Session, line string, opts *QueryOptions) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".tables":
		sch := sess.Schema()
		if sch == nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No database loaded")
			return true
		}
		for _, t := range sch.Tables {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", t.Name, t.RowCount)
		}
		return true

	case ".schema":
		sch := sess.Schema()
		if sch == nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No database loaded")
			return true
		}
		if len(parts) < 2 {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), sch.ToDDL())
			return true
		}
		tbl := sch.Table(parts[1])
		if tbl == nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Table '%s' not found\n", parts[1])
			return true
		}
		single := schema.Schema{Tables: []schema.Table{*tbl}}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), single.ToDDL())
		return true

	case ".examples":
		sch := sess.Schema()
		if sch == nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No database loaded")
			return true
		}
		for _, ex := range sch.Examples() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n%s\n\n", ex.Description, ex.SQL)
		}
		return true

	case ".fmt":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .fmt <SQL>")
			return true
		}
		sql := strings.TrimPrefix(line, parts[0])
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), sqlformat.Format(sql))
		return true

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current format: %s\n", opts.Format)
			return true
		}
		switch parts[1] {
		case "table", "json", "csv", "md":
			opts.Format = parts[1]
		default:
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown format: %s (table, json, csv, md)\n", parts[1])
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables with row counts
  .schema [name]  Show CREATE TABLE text for one table or all
  .examples       Show starter queries for the loaded schema
  .fmt <SQL>      Pretty-print a SQL statement
  .format [fmt]   Show or set the output format (table, json, csv, md)
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer from the loaded schema.
func newTableCompleter(sess *session.Session) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	if sch := sess.Schema(); sch != nil {
		for _, t := range sch.Tables {
			items = append(items, readline.PcItem(t.Name))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".examples"),
		readline.PcItem(".fmt"),
		readline.PcItem(".format"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
