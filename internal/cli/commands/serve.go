package commands

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/querylens-labs/querylens/internal/history"
	"github.com/querylens-labs/querylens/internal/ui"
	"github.com/querylens-labs/querylens/pkg/assist"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Database  string
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QueryLens web server",
		Long: `Start a local web server exposing the query API: database upload,
schema browsing, query execution with chart selection, result export
and SQL assist.`,
		Example: `  # Start with an empty session; upload a file from the browser
  querylens serve

  # Preload a database and reload it when the file changes
  querylens serve --database sales.db

  # Custom port
  querylens serve --port 3000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Database, "database", "d", "", "Database file to preload")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	sess := newSession(cc)
	defer func() { _ = sess.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Database != "" {
		if _, err := sess.LoadPath(ctx, opts.Database); err != nil {
			return fmt.Errorf("failed to load %s: %w", opts.Database, err)
		}
	}

	var store *history.Store
	if cfg.History.Path != "" {
		if dir := filepath.Dir(cfg.History.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		store = history.NewStore()
		if err := store.Open(cfg.History.Path); err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	var generator assist.Generator
	if cfg.Assist.Endpoint != "" {
		generator = assist.NewCachedGenerator(
			assist.NewHTTPGenerator(cfg.Assist.Endpoint),
			cfg.Assist.CacheSize,
			cfg.Assist.CacheTTL,
		)
	}

	server := ui.NewServer(ui.Config{
		Session:       sess,
		History:       store,
		Generator:     generator,
		Port:          cfg.Server.Port,
		Watch:         cfg.Server.Watch && opts.Database != "",
		WatchPath:     opts.Database,
		PageSize:      cfg.View.PageSize,
		SessionSecret: sessionSecret(cfg.Server.SessionSecret),
		Logger:        cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if !opts.NoBrowser {
		go openBrowser(url)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting server on %s\n", url)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return server.Serve(ctx)
}

// sessionSecret returns the configured cookie secret or the development
// fallback.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	if secret := os.Getenv("QUERYLENS_SERVER_SESSION_SECRET"); secret != "" {
		return secret
	}
	return "querylens-dev-secret-change-in-production" //nolint:gosec
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
