package database

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/querylens-labs/querylens/internal/session"
)

// SetupRoutes registers the database feature routes.
func SetupRoutes(r chi.Router, sess *session.Session, logger *slog.Logger) {
	handlers := NewHandlers(sess, logger)

	r.Route("/api/database", func(r chi.Router) {
		r.Post("/", handlers.Upload)
		r.Delete("/", handlers.Remove)
		r.Get("/", handlers.GetStatus)
	})

	r.Route("/api/schema", func(r chi.Router) {
		r.Get("/", handlers.GetSchema)
		r.Get("/ddl", handlers.GetDDL)
		r.Get("/examples", handlers.GetExamples)
	})
}
