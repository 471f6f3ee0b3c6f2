package tableview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-labs/querylens/pkg/analyze"
)

func newTestView(t *testing.T, opts ...Option) *View {
	t.Helper()
	columns := []string{"id", "name", "amount", "signup"}
	rows := [][]any{
		{int64(1), "Alice", 10.5, "2024-01-03"},
		{int64(2), "bob", 2.0, "2024-01-01"},
		{int64(3), "Carol", nil, "2024-01-02"},
		{int64(4), "dave", 30.0, nil},
		{int64(5), "Eve", 7.25, "2024-01-05"},
	}
	infos := analyze.Columns(columns, rows)
	return New(columns, rows, infos, opts...)
}

func TestViewDefaults(t *testing.T) {
	v := newTestView(t)

	assert.Equal(t, 1, v.Page())
	assert.Equal(t, 1, v.TotalPages())
	assert.Equal(t, 5, v.FilteredCount())
	assert.Len(t, v.Rows(), 5)

	col, dir := v.SortState()
	assert.Equal(t, -1, col)
	assert.Equal(t, SortNone, dir)
}

func TestSearchFiltersAndResetsPage(t *testing.T) {
	v := newTestView(t, WithPageSize(2))
	v.SetPage(3)
	require.Equal(t, 3, v.Page())

	v.SetSearch("ali")
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, 1, v.FilteredCount())
	assert.Equal(t, "Alice", v.Rows()[0][1])

	// Case-insensitive across every cell, including numbers.
	v.SetSearch("30")
	assert.Equal(t, 1, v.FilteredCount())
	assert.Equal(t, "dave", v.Rows()[0][1])

	v.SetSearch("")
	assert.Equal(t, 5, v.FilteredCount())
}

func TestSearchSkipsNullCells(t *testing.T) {
	v := newTestView(t)
	v.SetSearch("null")
	assert.Equal(t, 0, v.FilteredCount())
}

func TestToggleSortCycle(t *testing.T) {
	v := newTestView(t)
	original := v.Rows()

	v.ToggleSort(2)
	col, dir := v.SortState()
	assert.Equal(t, 2, col)
	assert.Equal(t, SortAscending, dir)

	v.ToggleSort(2)
	_, dir = v.SortState()
	assert.Equal(t, SortDescending, dir)

	v.ToggleSort(2)
	col, dir = v.SortState()
	assert.Equal(t, -1, col)
	assert.Equal(t, SortNone, dir)

	// Full cycle restores the original row order.
	assert.Equal(t, original, v.Rows())
}

func TestToggleSortDifferentColumnStartsAscending(t *testing.T) {
	v := newTestView(t)
	v.ToggleSort(0)
	v.ToggleSort(0) // descending
	v.ToggleSort(1) // new column starts over

	col, dir := v.SortState()
	assert.Equal(t, 1, col)
	assert.Equal(t, SortAscending, dir)
}

func TestSortNumericWithNulls(t *testing.T) {
	v := newTestView(t)

	v.ToggleSort(2) // amount ascending, null last
	rows := v.Rows()
	assert.Equal(t, 2.0, rows[0][2])
	assert.Equal(t, 7.25, rows[1][2])
	assert.Equal(t, 10.5, rows[2][2])
	assert.Equal(t, 30.0, rows[3][2])
	assert.Nil(t, rows[4][2])

	v.ToggleSort(2) // descending is the exact reversal, null first
	rows = v.Rows()
	assert.Nil(t, rows[0][2])
	assert.Equal(t, 30.0, rows[1][2])
	assert.Equal(t, 2.0, rows[4][2])
}

func TestSortStringCaseInsensitive(t *testing.T) {
	v := newTestView(t)

	v.ToggleSort(1)
	rows := v.Rows()
	var names []string
	for _, row := range rows {
		names = append(names, row[1].(string))
	}
	assert.Equal(t, []string{"Alice", "bob", "Carol", "dave", "Eve"}, names)
}

func TestSortDateColumn(t *testing.T) {
	v := newTestView(t)

	v.ToggleSort(3)
	rows := v.Rows()
	assert.Equal(t, "2024-01-01", rows[0][3])
	assert.Equal(t, "2024-01-02", rows[1][3])
	assert.Equal(t, "2024-01-05", rows[3][3])
	assert.Nil(t, rows[4][3])
}

func TestSortIsStable(t *testing.T) {
	columns := []string{"group", "seq"}
	rows := [][]any{
		{"b", int64(1)},
		{"a", int64(2)},
		{"b", int64(3)},
		{"a", int64(4)},
	}
	v := New(columns, rows, analyze.Columns(columns, rows))

	v.ToggleSort(0)
	sorted := v.Rows()
	assert.Equal(t, int64(2), sorted[0][1])
	assert.Equal(t, int64(4), sorted[1][1])
	assert.Equal(t, int64(1), sorted[2][1])
	assert.Equal(t, int64(3), sorted[3][1])
}

func TestPagination(t *testing.T) {
	v := newTestView(t, WithPageSize(2))

	assert.Equal(t, 3, v.TotalPages())
	assert.Len(t, v.PageRows(), 2)

	v.SetPage(3)
	assert.Len(t, v.PageRows(), 1)

	// Out-of-range pages clamp.
	v.SetPage(99)
	assert.Equal(t, 3, v.Page())
	v.SetPage(0)
	assert.Equal(t, 1, v.Page())
}

func TestPaginationEmptyResult(t *testing.T) {
	v := New([]string{"a"}, nil, nil)

	assert.Equal(t, 1, v.TotalPages())
	assert.Equal(t, 0, v.FilteredCount())
	assert.Empty(t, v.PageRows())
}

func TestSortInvalidColumnIgnored(t *testing.T) {
	v := newTestView(t)
	v.ToggleSort(-1)
	v.ToggleSort(99)

	col, dir := v.SortState()
	assert.Equal(t, -1, col)
	assert.Equal(t, SortNone, dir)
}
