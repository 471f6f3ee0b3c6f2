package database

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// csvPreviewRows is how many data rows a CSV upload materializes. CSV
// support is a preview: a single all-TEXT table over the file's head,
// enough to browse and query the shape of the data.
const csvPreviewRows = 5

var identSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// openCSV builds a fresh in-memory database containing one all-TEXT
// table named after the file, holding the header and the first rows.
func openCSV(name string, size int64, data []byte) (*Handle, error) {
	if size > MaxFileBytes {
		return nil, ErrFileTooLarge
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("CSV file has no columns")
	}

	var rows [][]string
	for len(rows) < csvPreviewRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, record)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// The pool must not fan out: each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	table := tableNameFor(name)
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = quoteIdent(columnNameFor(h, i))
	}

	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)",
		quoteIdent(table), strings.Join(columns, " TEXT, ")+" TEXT")
	if _, err := db.Exec(createStmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create preview table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), placeholders)
	for _, record := range rows {
		args := make([]any, len(header))
		for i := range header {
			if i < len(record) {
				args[i] = record[i]
			} else {
				args[i] = nil
			}
		}
		if _, err := db.Exec(insertStmt, args...); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to insert preview row: %w", err)
		}
	}

	return &Handle{db: db, name: name, size: size}, nil
}

// tableNameFor derives a SQL identifier from the CSV file name.
func tableNameFor(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	cleaned := strings.Trim(identSanitizer.ReplaceAllString(base, "_"), "_")
	if cleaned == "" {
		return "data"
	}
	if cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "t_" + cleaned
	}
	return cleaned
}

// columnNameFor derives a column identifier from a header cell.
func columnNameFor(header string, index int) string {
	cleaned := strings.Trim(identSanitizer.ReplaceAllString(strings.TrimSpace(header), "_"), "_")
	if cleaned == "" {
		return fmt.Sprintf("column_%d", index+1)
	}
	return cleaned
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
