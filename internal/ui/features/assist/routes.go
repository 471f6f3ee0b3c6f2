package assist

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/pkg/assist"
)

// SetupRoutes registers the assist feature routes.
func SetupRoutes(r chi.Router, sess *session.Session, gen assist.Generator, logger *slog.Logger) {
	handlers := NewHandlers(sess, gen, logger)

	r.Post("/api/assist", handlers.Generate)
}
