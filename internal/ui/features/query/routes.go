package query

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the query feature routes.
func SetupRoutes(r chi.Router, deps Deps) {
	handlers := NewHandlers(deps)

	r.Route("/api/query", func(r chi.Router) {
		r.Post("/", handlers.Execute)
		r.Post("/export/{format}", handlers.Export)
		r.Get("/last", handlers.LastSQL)
		r.Get("/history", handlers.History)
	})

	r.Post("/api/format", handlers.Format)
}
