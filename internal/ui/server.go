// Package ui provides the web API server for QueryLens: database
// upload and lifecycle, schema browsing, query execution and result
// export over a session-scoped engine.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/querylens-labs/querylens/internal/history"
	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/internal/ui/router"
	"github.com/querylens-labs/querylens/pkg/assist"
)

// Server is the web API server. It owns one engine session; browser
// state (last query, current page) lives in a cookie session.
type Server struct {
	sess         *session.Session
	store        *history.Store
	generator    assist.Generator
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	watchPath    string
	pageSize     int
	logger       *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Session       *session.Session
	History       *history.Store
	Generator     assist.Generator
	Port          int
	Watch         bool
	WatchPath     string
	PageSize      int
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 7) // 7 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		sess:         cfg.Session,
		store:        cfg.History,
		generator:    cfg.Generator,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		watchPath:    cfg.WatchPath,
		pageSize:     cfg.PageSize,
		logger:       logger,
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	router.SetupRoutes(r, router.Deps{
		Session:      s.sess,
		History:      s.store,
		Generator:    s.generator,
		SessionStore: s.sessionStore,
		PageSize:     s.pageSize,
		Logger:       s.logger,
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.watchPath != "" {
		eg.Go(func() error {
			return s.watchDatabase(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchDatabase reloads the engine session when the served database
// file changes on disk. Events are debounced: editors and sqlite both
// produce bursts of writes for one logical change.
func (s *Server) watchDatabase(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(s.watchPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.watchPath, err)
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.watchPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)
		case <-reload:
			s.logger.Info("database file changed, reloading", "path", s.watchPath)
			if _, err := s.sess.Reload(ctx); err != nil {
				s.logger.Warn("reload failed", "error", err)
			}
		}
	}
}
