package tableview

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Default filenames for result downloads.
const (
	JSONFilename = "query-results.json"
	CSVFilename  = "query-results.csv"
)

// JSONExport is the JSON download payload.
type JSONExport struct {
	Columns    []string         `json:"columns"`
	Data       []map[string]any `json:"data"`
	Total      int              `json:"total"`
	ExportedAt string           `json:"exported_at"`
}

// ExportJSON writes the filtered and sorted rows as an indented JSON
// document, one object per row keyed by column name.
func (v *View) ExportJSON(w io.Writer) error {
	data := make([]map[string]any, 0, len(v.visible))
	for _, row := range v.Rows() {
		m := make(map[string]any, len(v.columns))
		for i, col := range v.columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		data = append(data, m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONExport{
		Columns:    v.columns,
		Data:       data,
		Total:      len(data),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ExportCSV writes the filtered and sorted rows as RFC4180 CSV with a
// header row. Null cells become empty fields.
func (v *View) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(v.columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range v.Rows() {
		record := make([]string, len(v.columns))
		for i := range v.columns {
			if i < len(row) && row[i] != nil {
				record[i] = cellString(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PlainText renders the current page as a tab-separated table with a
// header row and the NULL literal for null cells. This is also the
// clipboard payload.
func (v *View) PlainText() string {
	var b strings.Builder
	b.WriteString(strings.Join(v.columns, "\t"))
	b.WriteString("\n")
	for _, row := range v.PageRows() {
		cells := make([]string, len(v.columns))
		for i := range v.columns {
			if i < len(row) && row[i] != nil {
				cells[i] = cellString(row[i])
			} else {
				cells[i] = "NULL"
			}
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPretty renders the current page as a bordered text table for
// terminal display.
func (v *View) RenderPretty(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(v.columns))
	for i, col := range v.columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range v.PageRows() {
		r := make(table.Row, len(v.columns))
		for i := range v.columns {
			if i < len(row) && row[i] != nil {
				r[i] = cellString(row[i])
			} else {
				r[i] = "NULL"
			}
		}
		t.AppendRow(r)
	}

	t.Render()
	fmt.Fprintf(w, "(%d rows, page %d/%d)\n", v.FilteredCount(), v.Page(), v.TotalPages())
}

// RenderAll renders every filtered row (not just the current page) as a
// bordered text table; used by the one-shot CLI query command.
func RenderAll(w io.Writer, columns []string, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) && row[i] != nil {
				r[i] = cellString(row[i])
			} else {
				r[i] = "NULL"
			}
		}
		t.AppendRow(r)
	}

	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// Clipboard abstracts the host clipboard. Implementations must report
// failure as an error value; copy failures are surfaced, never fatal.
type Clipboard interface {
	WriteText(text string) error
}

// CopyToClipboard writes the plain-text table to the clipboard.
func (v *View) CopyToClipboard(c Clipboard) error {
	if c == nil {
		return fmt.Errorf("no clipboard available")
	}
	if err := c.WriteText(v.PlainText()); err != nil {
		return fmt.Errorf("clipboard copy failed: %w", err)
	}
	return nil
}
