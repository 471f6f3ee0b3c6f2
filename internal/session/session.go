// Package session owns the per-session database lifecycle: one live
// handle at a time, an immutable schema snapshot between mutations, and
// a single in-flight query. State transitions follow an explicit
// machine so a replace can never leave two handles open.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/querylens-labs/querylens/pkg/database"
	"github.com/querylens-labs/querylens/pkg/executor"
	"github.com/querylens-labs/querylens/pkg/schema"
)

// State is the lifecycle state of the session's database slot.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Session holds the loaded database, its schema snapshot and the query
// execution settings. All methods are safe for concurrent use; mutation
// is serialized and rejected while a query is in flight.
type Session struct {
	mu         sync.Mutex
	state      State
	handle     *database.Handle
	schema     *schema.Schema
	loadedPath string
	generation uint64
	inFlight   bool

	timeout    time.Duration
	maxRows    int
	sampleRows int
	checker    executor.SafetyChecker
	logger     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the query execution deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithMaxRows sets the result row cap.
func WithMaxRows(n int) Option {
	return func(s *Session) { s.maxRows = n }
}

// WithSampleRows sets how many sample rows schema extraction fetches.
func WithSampleRows(n int) Option {
	return func(s *Session) { s.sampleRows = n }
}

// WithSafetyChecker swaps the statement safety checker.
func WithSafetyChecker(c executor.SafetyChecker) Option {
	return func(s *Session) { s.checker = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		state:      StateEmpty,
		timeout:    executor.DefaultTimeout,
		maxRows:    executor.DefaultMaxRows,
		sampleRows: schema.DefaultSampleRows,
		checker:    executor.NewKeywordDenylist(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the handle generation counter. It advances on
// every load, replace and remove, so results can be keyed to the
// handle they were produced against.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Schema returns the current schema snapshot, or nil when no database
// is loaded. Callers must treat it as immutable.
func (s *Session) Schema() *schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// LoadPath loads a database file from disk, replacing any current one.
func (s *Session) LoadPath(ctx context.Context, path string) (*schema.Schema, error) {
	sch, err := s.load(ctx, path, func() (*database.Handle, error) {
		return database.OpenPath(path)
	})
	return sch, err
}

// LoadBytes loads an uploaded file, replacing any current database.
func (s *Session) LoadBytes(ctx context.Context, name string, data []byte) (*schema.Schema, error) {
	return s.load(ctx, "", func() (*database.Handle, error) {
		return database.OpenBytes(name, data)
	})
}

// Reload reopens the current database from its file path. Only valid
// for path-loaded sessions; used when the file changes on disk.
func (s *Session) Reload(ctx context.Context) (*schema.Schema, error) {
	s.mu.Lock()
	path := s.loadedPath
	s.mu.Unlock()
	if path == "" {
		return nil, ErrNoDatabase
	}
	return s.LoadPath(ctx, path)
}

// load runs the guarded Ready -> Closing -> Loading -> Ready transition:
// the previous handle is torn down before the new one is acquired, so
// two handles are never live at once. A load rejected while a query is
// in flight leaves the session untouched.
func (s *Session) load(ctx context.Context, path string, open func() (*database.Handle, error)) (*schema.Schema, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.state == StateLoading || s.state == StateClosing {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	if s.handle != nil {
		s.state = StateClosing
		if err := s.handle.Close(); err != nil {
			s.logger.Warn("error closing previous database", "error", err)
		}
		s.handle = nil
		s.schema = nil
		s.loadedPath = ""
	}
	s.state = StateLoading
	s.generation++
	s.mu.Unlock()

	handle, err := open()
	if err != nil {
		s.mu.Lock()
		s.state = StateEmpty
		s.mu.Unlock()
		return nil, err
	}

	ext := schema.NewExtractor(handle.DB(),
		schema.WithSampleRows(s.sampleRows),
		schema.WithLogger(s.logger))
	sch, err := ext.Extract(ctx, handle.Name(), handle.SizeBytes())
	if err != nil {
		_ = handle.Close()
		s.mu.Lock()
		s.state = StateEmpty
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.handle = handle
	s.schema = sch
	s.loadedPath = path
	s.state = StateReady
	s.mu.Unlock()

	s.logger.Info("database loaded",
		"name", sch.DatabaseName,
		"tables", sch.TotalTables,
		"bytes", sch.FileSizeBytes)
	return sch, nil
}

// Remove closes the current database and returns the session to Empty.
func (s *Session) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrBusy
	}
	if s.handle == nil {
		return nil
	}
	s.state = StateClosing
	err := s.handle.Close()
	s.handle = nil
	s.schema = nil
	s.loadedPath = ""
	s.generation++
	s.state = StateEmpty
	return err
}

// Close releases all session resources.
func (s *Session) Close() error {
	return s.Remove()
}

// Execute runs SQL against the loaded database. Failures are returned
// as *executor.QueryError values; at most one query runs at a time.
func (s *Session) Execute(ctx context.Context, query string) (*executor.QueryResult, error) {
	s.mu.Lock()
	if s.state != StateReady || s.handle == nil {
		s.mu.Unlock()
		return nil, &executor.QueryError{Kind: executor.ErrorRuntime, Message: "No database loaded"}
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, &executor.QueryError{Kind: executor.ErrorRuntime, Message: "Another query is already running"}
	}
	s.inFlight = true
	db := s.handle.DB()
	s.mu.Unlock()

	exec := executor.New(db,
		executor.WithTimeout(s.timeout),
		executor.WithMaxRows(s.maxRows),
		executor.WithSafetyChecker(s.checker),
		executor.WithLogger(s.logger))
	result, err := exec.Execute(ctx, query)

	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
	return result, err
}
