package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/querylens-labs/querylens/pkg/executor"
)

// DefaultSampleRows is the number of sample rows fetched per table.
const DefaultSampleRows = 3

// ExtractionError means catalog introspection itself failed; no schema
// can be returned and the caller must treat the load as failed.
type ExtractionError struct {
	cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("schema extraction failed: %v", e.cause)
}

func (e *ExtractionError) Unwrap() error { return e.cause }

// Extractor introspects a loaded SQLite database.
type Extractor struct {
	db         *sql.DB
	sampleRows int
	logger     *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSampleRows overrides how many sample rows are fetched per table.
func WithSampleRows(n int) ExtractorOption {
	return func(x *Extractor) { x.sampleRows = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtractorOption {
	return func(x *Extractor) { x.logger = l }
}

// NewExtractor creates an Extractor over an open database handle.
func NewExtractor(db *sql.DB, opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		db:         db,
		sampleRows: DefaultSampleRows,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract produces the full Schema for the loaded database. Listing the
// catalog is fatal on failure; introspection of a single table is not,
// the table is logged and skipped so the rest of the schema survives.
func (x *Extractor) Extract(ctx context.Context, databaseName string, fileSizeBytes int64) (*Schema, error) {
	names, err := x.listTables(ctx)
	if err != nil {
		return nil, &ExtractionError{cause: err}
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		t, err := x.extractTable(ctx, name)
		if err != nil {
			x.logger.Warn("skipping table after introspection failure",
				"table", name, "error", err)
			continue
		}
		tables = append(tables, t)
	}

	return &Schema{
		DatabaseName:  databaseName,
		FileSizeBytes: fileSizeBytes,
		TotalTables:   len(tables),
		Tables:        tables,
	}, nil
}

// listTables returns user table names in catalog discovery order,
// excluding the engine's sqlite_* internal tables.
func (x *Extractor) listTables(ctx context.Context) ([]string, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

func (x *Extractor) extractTable(ctx context.Context, name string) (Table, error) {
	columns, err := x.tableColumns(ctx, name)
	if err != nil {
		return Table{}, err
	}
	if err := x.applyForeignKeys(ctx, name, columns); err != nil {
		return Table{}, err
	}

	rowCount, err := x.countRows(ctx, name)
	if err != nil {
		return Table{}, err
	}

	samples, err := x.sampleData(ctx, name)
	if err != nil {
		return Table{}, err
	}

	return Table{
		Name:          name,
		RowCount:      rowCount,
		Columns:       columns,
		SampleData:    samples,
		Relationships: deriveRelationships(columns),
	}, nil
}

// tableColumns introspects column metadata via PRAGMA table_info.
func (x *Extractor) tableColumns(ctx context.Context, table string) ([]Column, error) {
	rows, err := x.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info failed for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table_info row for %s: %w", table, err)
		}
		col := Column{
			Name:         name,
			DeclaredType: declType,
			PrimaryKey:   pk > 0,
			NotNull:      notNull != 0,
		}
		if dflt.Valid {
			v := dflt.String
			col.DefaultValue = &v
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table_info for %s: %w", table, err)
	}
	return columns, nil
}

// applyForeignKeys marks FK columns and attaches their references using
// PRAGMA foreign_key_list.
func (x *Extractor) applyForeignKeys(ctx context.Context, table string, columns []Column) error {
	rows, err := x.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)))
	if err != nil {
		return fmt.Errorf("foreign_key_list failed for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id, seq            int
			target, from       string
			to                 sql.NullString
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &target, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return fmt.Errorf("failed to scan foreign_key_list row for %s: %w", table, err)
		}
		for i := range columns {
			if columns[i].Name != from {
				continue
			}
			columns[i].ForeignKey = true
			ref := &Reference{Table: target, Column: to.String}
			if !to.Valid {
				// Implicit reference to the target's primary key.
				ref.Column = "rowid"
			}
			columns[i].References = ref
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating foreign_key_list for %s: %w", table, err)
	}
	return nil
}

func (x *Extractor) countRows(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := x.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("row count failed for %s: %w", table, err)
	}
	return count, nil
}

func (x *Extractor) sampleData(ctx context.Context, table string) ([][]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), x.sampleRows)
	rows, err := x.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample fetch failed for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sample columns failed for %s: %w", table, err)
	}

	samples := make([][]any, 0, x.sampleRows)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sample scan failed for %s: %w", table, err)
		}
		row := make([]any, len(cols))
		for i, v := range values {
			row[i] = executor.NormalizeValue(v)
		}
		samples = append(samples, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples for %s: %w", table, err)
	}
	return samples, nil
}

// deriveRelationships projects foreign-key columns into one-to-many
// relationship entries, one per FK column.
func deriveRelationships(columns []Column) []Relationship {
	var rels []Relationship
	for _, c := range columns {
		if !c.ForeignKey || c.References == nil {
			continue
		}
		rels = append(rels, Relationship{
			Kind:         RelationshipOneToMany,
			SourceColumn: c.Name,
			TargetTable:  c.References.Table,
			TargetColumn: c.References.Column,
		})
	}
	return rels
}

// quoteIdent double-quotes an identifier for safe interpolation into
// PRAGMA and COUNT statements, which do not accept bind parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
