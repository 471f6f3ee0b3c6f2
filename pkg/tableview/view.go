// Package tableview provides the in-memory presentation layer over a
// fixed query result: search filtering, tri-state type-aware sorting,
// pagination and export. No data leaves the process; every operation
// works on the snapshot taken at construction.
package tableview

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/querylens-labs/querylens/pkg/analyze"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// SortDirection is the tri-state sort toggle.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAscending
	SortDescending
)

// View holds a result snapshot plus the current filter/sort/page state.
type View struct {
	columns  []string
	rows     [][]any
	infos    []analyze.ColumnInfo
	pageSize int
	coll     *collate.Collator

	search     string
	sortColumn int
	sortDir    SortDirection
	page       int

	// visible holds indexes into rows, filtered then sorted.
	visible []int
}

// Option configures a View.
type Option func(*View)

// WithPageSize overrides the page size.
func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

// New creates a View over a result snapshot. infos must be the analysis
// of the same columns/rows.
func New(columns []string, rows [][]any, infos []analyze.ColumnInfo, opts ...Option) *View {
	v := &View{
		columns:    columns,
		rows:       rows,
		infos:      infos,
		pageSize:   DefaultPageSize,
		coll:       collate.New(language.Und, collate.IgnoreCase),
		sortColumn: -1,
		page:       1,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.refresh()
	return v
}

// Columns returns the result column names.
func (v *View) Columns() []string { return v.columns }

// SetSearch applies a case-insensitive substring filter across every
// cell and resets to the first page.
func (v *View) SetSearch(term string) {
	v.search = term
	v.page = 1
	v.refresh()
}

// Search returns the current filter term.
func (v *View) Search() string { return v.search }

// ToggleSort advances the tri-state sort on the given column:
// unsorted -> ascending -> descending -> unsorted. Toggling a different
// column starts that column at ascending.
func (v *View) ToggleSort(column int) {
	if column < 0 || column >= len(v.columns) {
		return
	}
	if column != v.sortColumn {
		v.sortColumn = column
		v.sortDir = SortAscending
	} else {
		switch v.sortDir {
		case SortNone:
			v.sortDir = SortAscending
		case SortAscending:
			v.sortDir = SortDescending
		default:
			v.sortDir = SortNone
			v.sortColumn = -1
		}
	}
	v.refresh()
}

// SortState reports the current sort column (-1 when unsorted) and
// direction.
func (v *View) SortState() (int, SortDirection) { return v.sortColumn, v.sortDir }

// SetPage moves to the given page, clamped to the valid range.
func (v *View) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if max := v.TotalPages(); n > max {
		n = max
	}
	v.page = n
}

// Page returns the current page number.
func (v *View) Page() int { return v.page }

// TotalPages returns the page count after filtering, at least 1.
func (v *View) TotalPages() int {
	n := (len(v.visible) + v.pageSize - 1) / v.pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// FilteredCount returns the number of rows after filtering.
func (v *View) FilteredCount() int { return len(v.visible) }

// Rows returns all filtered and sorted rows.
func (v *View) Rows() [][]any {
	out := make([][]any, len(v.visible))
	for i, idx := range v.visible {
		out[i] = v.rows[idx]
	}
	return out
}

// PageRows returns the rows of the current page.
func (v *View) PageRows() [][]any {
	start := (v.page - 1) * v.pageSize
	if start >= len(v.visible) {
		return nil
	}
	end := start + v.pageSize
	if end > len(v.visible) {
		end = len(v.visible)
	}
	out := make([][]any, 0, end-start)
	for _, idx := range v.visible[start:end] {
		out = append(out, v.rows[idx])
	}
	return out
}

// refresh rebuilds the visible index list from the filter and sort state.
func (v *View) refresh() {
	v.visible = v.visible[:0]
	term := strings.ToLower(v.search)
	for i, row := range v.rows {
		if term == "" || rowMatches(row, term) {
			v.visible = append(v.visible, i)
		}
	}

	if v.sortColumn < 0 || v.sortDir == SortNone {
		return
	}

	col := v.sortColumn
	// Sort ascending with nulls greatest; descending is the exact
	// reversal, which also lands nulls at the start.
	sort.SliceStable(v.visible, func(a, b int) bool {
		return v.compare(v.rows[v.visible[a]], v.rows[v.visible[b]], col) < 0
	})
	if v.sortDir == SortDescending {
		for i, j := 0, len(v.visible)-1; i < j; i, j = i+1, j-1 {
			v.visible[i], v.visible[j] = v.visible[j], v.visible[i]
		}
	}
}

// rowMatches reports whether any non-null cell contains the lowercased term.
func rowMatches(row []any, term string) bool {
	for _, cell := range row {
		if cell == nil {
			continue
		}
		if strings.Contains(strings.ToLower(cellString(cell)), term) {
			return true
		}
	}
	return false
}

// compare orders two rows by the given column using its inferred type.
// Nulls compare greater than everything.
func (v *View) compare(a, b []any, col int) int {
	var av, bv any
	if col < len(a) {
		av = a[col]
	}
	if col < len(b) {
		bv = b[col]
	}
	switch {
	case av == nil && bv == nil:
		return 0
	case av == nil:
		return 1
	case bv == nil:
		return -1
	}

	colType := analyze.TypeString
	if col < len(v.infos) {
		colType = v.infos[col].InferredType
	}

	switch colType {
	case analyze.TypeNumber:
		an, aok := analyze.AsNumber(av)
		bn, bok := analyze.AsNumber(bv)
		if aok && bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	case analyze.TypeDate:
		at, aok := analyze.ParseDate(cellString(av))
		bt, bok := analyze.ParseDate(cellString(bv))
		if aok && bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	return v.coll.CompareString(cellString(av), cellString(bv))
}

// cellString renders a normalized cell value for comparison and filtering.
func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
