// Package history persists query executions to a local SQLite state
// database so past queries survive restarts. It is deliberately
// separate from the executor: callers that want no persistence simply
// do not wire a store.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// sqlite driver for the history database.
	_ "modernc.org/sqlite"
)

// Entry is one recorded query execution.
type Entry struct {
	ID         string    `json:"id"`
	SQL        string    `json:"sql"`
	Database   string    `json:"database"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	RowCount   int       `json:"row_count"`
	DurationMs float64   `json:"duration_ms"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Statuses recorded per entry.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Store is a SQLite-backed history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates an unopened store.
func NewStore() *Store {
	return &Store{}
}

// Open opens the history database and runs pending migrations.
// Use ":memory:" for an in-memory store.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the history database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one execution entry and returns it with its ID set.
func (s *Store) Record(e Entry) (*Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO query_history (id, sql_text, database_name, status, error_kind, row_count, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SQL, e.Database, e.Status, e.ErrorKind, e.RowCount, e.DurationMs, e.ExecutedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record query: %w", err)
	}
	return &e, nil
}

// ListRecent returns the most recent entries, newest first.
func (s *Store) ListRecent(limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, sql_text, database_name, status, error_kind, row_count, duration_ms, executed_at
		FROM query_history
		ORDER BY executed_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errKind sql.NullString
		if err := rows.Scan(&e.ID, &e.SQL, &e.Database, &e.Status, &errKind, &e.RowCount, &e.DurationMs, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.ErrorKind = errKind.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

// Clear removes all history entries.
func (s *Store) Clear() error {
	if s.db == nil {
		return fmt.Errorf("history database not opened")
	}
	if _, err := s.db.Exec(`DELETE FROM query_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
