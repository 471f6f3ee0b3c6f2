// Package query provides handlers for query execution, presentation
// and result export.
package query

import (
	"github.com/querylens-labs/querylens/pkg/analyze"
	"github.com/querylens-labs/querylens/pkg/chart"
	"github.com/querylens-labs/querylens/pkg/executor"
)

// Request is the execution request. The presentation fields reproduce
// the client's current view so exports and pages match what is shown.
type Request struct {
	SQL        string `json:"sql"`
	Search     string `json:"search,omitempty"`
	SortColumn *int   `json:"sort_column,omitempty"`
	SortDir    string `json:"sort_dir,omitempty"` // "asc" or "desc"
	Page       int    `json:"page,omitempty"`
}

// Response is the execution response: the raw result plus the derived
// presentation values for the requested view state.
type Response struct {
	Result     *executor.QueryResult `json:"result"`
	Columns    []analyze.ColumnInfo  `json:"columns"`
	Chart      chart.Data            `json:"chart"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
	Filtered   int                   `json:"filtered"`
	PageRows   [][]any               `json:"page_rows"`
}

// FormatRequest asks for a pretty-printed rendition of SQL text.
type FormatRequest struct {
	SQL string `json:"sql"`
}

// FormatResponse returns the formatted SQL.
type FormatResponse struct {
	SQL string `json:"sql"`
}
