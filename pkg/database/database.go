// Package database owns the embedded database handle: opening a SQLite
// file (from disk or uploaded bytes), validating it, and releasing it.
// Exactly one handle is live per session; the session layer enforces
// replace-before-open ordering.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// sqlite driver for loaded database files.
	_ "modernc.org/sqlite"
)

// MaxFileBytes is the upload size cap.
const MaxFileBytes = 10 << 20 // 10 MiB

// Load-time validation errors. These abort the load and leave any
// previously loaded database untouched.
var (
	ErrFileTooLarge     = errors.New("database file exceeds the 10 MB limit")
	ErrInvalidExtension = errors.New("unsupported file extension (use .db, .sqlite, .sqlite3 or .csv)")
)

var sqliteExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// Handle is exclusive ownership of one open embedded database.
type Handle struct {
	db       *sql.DB
	name     string
	size     int64
	tempPath string
}

// DB returns the underlying connection pool.
func (h *Handle) DB() *sql.DB { return h.db }

// Name returns the originating file name.
func (h *Handle) Name() string { return h.name }

// SizeBytes returns the originating file size.
func (h *Handle) SizeBytes() int64 { return h.size }

// Close releases the engine handle and any temp file backing an upload.
func (h *Handle) Close() error {
	var err error
	if h.db != nil {
		err = h.db.Close()
		h.db = nil
	}
	if h.tempPath != "" {
		_ = os.Remove(h.tempPath)
		h.tempPath = ""
	}
	return err
}

// OpenPath opens a SQLite file from disk, read-only.
func OpenPath(path string) (*Handle, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".csv" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read csv file: %w", err)
		}
		return openCSV(name, int64(len(data)), data)
	}
	if !sqliteExtensions[ext] {
		return nil, ErrInvalidExtension
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat database file: %w", err)
	}
	if info.Size() > MaxFileBytes {
		return nil, ErrFileTooLarge
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	return &Handle{db: db, name: name, size: info.Size()}, nil
}

// OpenBytes opens an uploaded file from its raw content. SQLite uploads
// are staged to a temp file (the engine operates on files); the temp
// file is removed on Close.
func OpenBytes(name string, data []byte) (*Handle, error) {
	if int64(len(data)) > MaxFileBytes {
		return nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".csv" {
		return openCSV(name, int64(len(data)), data)
	}
	if !sqliteExtensions[ext] {
		return nil, ErrInvalidExtension
	}

	tmp, err := os.CreateTemp("", "querylens-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	tempPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	db, err := openSQLite(tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, err
	}
	return &Handle{db: db, name: name, size: int64(len(data)), tempPath: tempPath}, nil
}

// openSQLite opens a database file read-only and verifies it parses as
// a SQLite database.
func openSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A corrupt or non-SQLite file fails on first real access.
	var ignored int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&ignored); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("file is not a valid SQLite database: %w", err)
	}
	return db, nil
}
