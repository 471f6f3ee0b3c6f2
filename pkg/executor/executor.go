package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultTimeout is the wall-clock execution deadline.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRows is the hard cap on returned result rows.
	DefaultMaxRows = 1000
)

// Executor runs SQL statements against a single open database handle.
// It enforces the read-only policy, the execution deadline and the
// result row cap. All failures are returned as *QueryError values.
type Executor struct {
	db      *sql.DB
	checker SafetyChecker
	timeout time.Duration
	maxRows int
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout overrides the execution deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithMaxRows overrides the result row cap.
func WithMaxRows(n int) Option {
	return func(e *Executor) { e.maxRows = n }
}

// WithSafetyChecker swaps the statement safety checker.
func WithSafetyChecker(c SafetyChecker) Option {
	return func(e *Executor) { e.checker = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an Executor over an open database handle. The handle may
// be nil; Execute then fails with a runtime error until a database is
// loaded.
func New(db *sql.DB, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		checker: NewKeywordDenylist(),
		timeout: DefaultTimeout,
		maxRows: DefaultMaxRows,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the statement and returns either a result or a
// *QueryError; the two outcomes are mutually exclusive. The returned
// error is always a *QueryError.
func (e *Executor) Execute(ctx context.Context, query string) (*QueryResult, error) {
	if e.db == nil {
		return nil, &QueryError{Kind: ErrorRuntime, Message: "No database loaded"}
	}
	if qerr := e.checker.Check(query); qerr != nil {
		return nil, qerr
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, e.classify(ctx, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, e.classify(ctx, err)
	}

	var collected [][]any
	for rows.Next() {
		if len(collected) >= e.maxRows {
			// One row past the cap is enough to know the result is oversized;
			// the remainder is never materialized.
			return nil, &QueryError{
				Kind: ErrorLimitExceeded,
				Message: fmt.Sprintf(
					"Query returned too many rows (>%d). Please add LIMIT clause.", e.maxRows),
			}
		}

		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, e.classify(ctx, err)
		}

		row := make([]any, len(cols))
		for i, v := range values {
			row[i] = NormalizeValue(v)
		}
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.classify(ctx, err)
	}

	elapsed := time.Since(start)
	e.logger.Debug("query executed",
		"rows", len(collected),
		"elapsed", elapsed.Round(time.Microsecond))

	result := &QueryResult{
		Columns:         cols,
		Rows:            collected,
		ExecutionTimeMs: float64(elapsed.Microseconds()) / 1000.0,
		RowCount:        len(collected),
		TablesAccessed:  extractTables(query),
		ExecutedAt:      start.UTC(),
	}
	if len(collected) == 0 {
		result.Columns = []string{}
		result.Rows = [][]any{}
	}
	return result, nil
}

// classify maps an engine error to the QueryError taxonomy. Deadline
// expiry wins over whatever wrapped error the driver surfaced.
func (e *Executor) classify(ctx context.Context, err error) *QueryError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &QueryError{
			Kind:    ErrorTimeout,
			Message: fmt.Sprintf("Query timed out (>%d seconds)", int(e.timeout.Seconds())),
		}
	}
	return &QueryError{Kind: ErrorRuntime, Message: err.Error()}
}
