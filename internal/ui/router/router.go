// Package router sets up HTTP routes for the web API server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/querylens-labs/querylens/internal/history"
	"github.com/querylens-labs/querylens/internal/session"
	assistFeature "github.com/querylens-labs/querylens/internal/ui/features/assist"
	databaseFeature "github.com/querylens-labs/querylens/internal/ui/features/database"
	queryFeature "github.com/querylens-labs/querylens/internal/ui/features/query"
	"github.com/querylens-labs/querylens/pkg/assist"
)

// Deps carries the shared dependencies handed to every feature.
type Deps struct {
	Session      *session.Session
	History      *history.Store
	Generator    assist.Generator
	SessionStore sessions.Store
	PageSize     int
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the API server.
func SetupRoutes(r chi.Router, deps Deps) {
	databaseFeature.SetupRoutes(r, deps.Session, deps.Logger)
	queryFeature.SetupRoutes(r, queryFeature.Deps{
		Session:      deps.Session,
		History:      deps.History,
		SessionStore: deps.SessionStore,
		PageSize:     deps.PageSize,
		Logger:       deps.Logger,
	})
	assistFeature.SetupRoutes(r, deps.Session, deps.Generator, deps.Logger)
}
