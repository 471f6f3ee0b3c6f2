// Package cli provides the command-line interface for QueryLens.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/querylens-labs/querylens/internal/cli/commands"
	"github.com/querylens-labs/querylens/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "querylens",
		Short: "QueryLens - SQLite analytical query engine",
		Long: `QueryLens is an analytical query engine for SQLite database files.

Point it at a .db, .sqlite or .csv file to inspect its schema, run
read-only queries with timeouts and row caps, and serve a web API with
chart selection, result export and natural-language SQL assist.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg)
			cmd.SetContext(commands.WithCommandContext(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags; each maps onto a config key and only
	// overrides the file/env value when explicitly set.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./querylens.yaml)")
	rootCmd.PersistentFlags().Int("port", 8765, "Web server port")
	rootCmd.PersistentFlags().Bool("watch", true, "Reload when the served database file changes")
	rootCmd.PersistentFlags().Int("timeout-ms", 10000, "Query execution timeout in milliseconds")
	rootCmd.PersistentFlags().Int("max-rows", 1000, "Maximum rows per query result")
	rootCmd.PersistentFlags().Int("sample-rows", 3, "Sample rows fetched per table during schema extraction")
	rootCmd.PersistentFlags().Int("page-size", 10, "Rows per page in the table view")
	rootCmd.PersistentFlags().String("assist-endpoint", "", "SQL generation endpoint URL")
	rootCmd.PersistentFlags().String("history", ".querylens/history.db", "Query history database path")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for QueryLens.

To load completions:

Bash:
  $ source <(querylens completion bash)

Zsh:
  $ querylens completion zsh > "${fpath[1]}/_querylens"

Fish:
  $ querylens completion fish | source

PowerShell:
  PS> querylens completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
