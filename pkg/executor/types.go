// Package executor runs read-only SQL against a loaded database and
// returns normalized result sets with a structured error taxonomy.
package executor

import (
	"fmt"
	"time"
)

// ErrorKind classifies a query failure so callers can render
// kind-specific guidance.
type ErrorKind string

const (
	// ErrorSyntax is returned when the safety checker rejects the statement.
	ErrorSyntax ErrorKind = "syntax"
	// ErrorRuntime is an engine-level failure (unknown table, bad expression).
	ErrorRuntime ErrorKind = "runtime"
	// ErrorTimeout means the statement exceeded the execution deadline.
	ErrorTimeout ErrorKind = "timeout"
	// ErrorLimitExceeded means the result set was larger than the row cap.
	ErrorLimitExceeded ErrorKind = "limit_exceeded"
)

// QueryError is the structured failure outcome of Execute. It is always
// returned as a value, never panicked, so the UI can branch on Kind.
type QueryError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsQueryError extracts a *QueryError from an error returned by Execute.
// Execute only ever returns *QueryError, so the second return is a
// safety net for miswired callers.
func AsQueryError(err error) (*QueryError, bool) {
	qe, ok := err.(*QueryError)
	return qe, ok
}

// QueryResult holds a successfully executed result set. Cell values are
// normalized to the closed scalar set {nil, int64, float64, bool, string}.
type QueryResult struct {
	Columns         []string  `json:"columns"`
	Rows            [][]any   `json:"rows"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
	RowCount        int       `json:"row_count"`
	TablesAccessed  []string  `json:"tables_accessed"`
	ExecutedAt      time.Time `json:"executed_at"`
}
