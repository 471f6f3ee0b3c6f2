// Package analyze infers a semantic type and summary statistics for
// each column of a query result.
package analyze

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the inferred semantic type of a result column.
type ColumnType string

const (
	TypeNumber  ColumnType = "number"
	TypeDate    ColumnType = "date"
	TypeString  ColumnType = "string"
	TypeBoolean ColumnType = "boolean"
)

// threshold is the fraction of non-null values that must satisfy a type
// predicate for the column to take that type.
const threshold = 0.8

// sampleLimit is how many leading non-null values are kept per column.
const sampleLimit = 5

// ColumnInfo is the per-column analysis of a result set. It is
// recomputed for every result, never cached.
type ColumnInfo struct {
	Name         string     `json:"name"`
	InferredType ColumnType `json:"inferred_type"`
	UniqueCount  int        `json:"unique_count"`
	NullCount    int        `json:"null_count"`
	SampleValues []any      `json:"sample_values"`
}

// Columns analyzes every column of the result, order-preserving.
func Columns(columns []string, rows [][]any) []ColumnInfo {
	infos := make([]ColumnInfo, len(columns))
	for i, name := range columns {
		var values []any
		for _, row := range rows {
			if i < len(row) && row[i] != nil {
				values = append(values, row[i])
			}
		}
		infos[i] = ColumnInfo{
			Name:         name,
			InferredType: inferType(values),
			UniqueCount:  uniqueCount(values),
			NullCount:    len(rows) - len(values),
			SampleValues: sampleValues(values),
		}
	}
	return infos
}

// inferType picks the highest-priority type for which at least 80% of
// the non-null values satisfy the predicate. An all-null column
// defaults to string.
func inferType(values []any) ColumnType {
	if len(values) == 0 {
		return TypeString
	}
	if meetsThreshold(values, isBoolean) {
		return TypeBoolean
	}
	if meetsThreshold(values, isNumber) {
		return TypeNumber
	}
	if meetsThreshold(values, isDate) {
		return TypeDate
	}
	return TypeString
}

func meetsThreshold(values []any, pred func(any) bool) bool {
	matched := 0
	for _, v := range values {
		if pred(v) {
			matched++
		}
	}
	return float64(matched) >= threshold*float64(len(values))
}

func isBoolean(v any) bool {
	switch x := v.(type) {
	case bool:
		return true
	case string:
		lower := strings.ToLower(x)
		return lower == "true" || lower == "false"
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch x := v.(type) {
	case int64:
		return true
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}

// dateLayouts covers the formats an untyped engine commonly stores.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123,
}

func isDate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = ParseDate(s)
	return ok
}

// ParseDate parses a cell value against the known date layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsNumber converts a cell value to a float64 if it is numeric.
func AsNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// uniqueCount counts distinct values by string coercion.
func uniqueCount(values []any) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[coerceString(v)] = struct{}{}
	}
	return len(seen)
}

// sampleValues returns the first values in original row order,
// duplicates included; the display layer may cap further.
func sampleValues(values []any) []any {
	if len(values) > sampleLimit {
		values = values[:sampleLimit]
	}
	out := make([]any, len(values))
	copy(out, values)
	return out
}

func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
