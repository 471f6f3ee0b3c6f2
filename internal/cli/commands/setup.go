package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/querylens-labs/querylens/internal/config"
	"github.com/querylens-labs/querylens/internal/session"
)

// CommandContext holds the common dependencies of CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

type commandContextKey struct{}

// WithCommandContext stores command dependencies in the context. The
// root command calls this after loading configuration.
func WithCommandContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, commandContextKey{}, &CommandContext{Cfg: cfg, Logger: logger})
}

// NewCommandContext retrieves the command dependencies, falling back to
// a defaults-only configuration when the root did not run (tests that
// invoke a subcommand directly).
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	if cc, ok := cmd.Context().Value(commandContextKey{}).(*CommandContext); ok {
		return cc
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		cfg = &config.Config{}
	}
	return &CommandContext{Cfg: cfg, Logger: slog.Default()}
}

// newSession builds an engine session from the configured bounds.
func newSession(cc *CommandContext) *session.Session {
	return session.New(
		session.WithTimeout(cc.Cfg.Query.Timeout()),
		session.WithMaxRows(cc.Cfg.Query.MaxRows),
		session.WithSampleRows(cc.Cfg.Load.SampleRows),
		session.WithLogger(cc.Logger),
	)
}
