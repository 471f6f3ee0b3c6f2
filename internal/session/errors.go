package session

import "errors"

var (
	// ErrBusy is returned when a mutation is attempted while a query is
	// executing or another mutation is in progress.
	ErrBusy = errors.New("session is busy")

	// ErrNoDatabase is returned by operations that require a loaded database.
	ErrNoDatabase = errors.New("no database loaded")
)
