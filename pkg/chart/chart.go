// Package chart decides whether and how to visualize a query result,
// using a priority-ordered rule set over the analyzed column types.
package chart

import "github.com/querylens-labs/querylens/pkg/analyze"

// Type is the selected visualization kind.
type Type string

const (
	TypeBar  Type = "bar"
	TypeLine Type = "line"
	TypePie  Type = "pie"
	TypeNone Type = "none"
)

// Cardinality limits keep categorical charts legible.
const (
	maxBarCategories = 20
	maxPieCategories = 10
)

// Data is the chart proposal handed to the rendering layer. Data holds
// the result rows reshaped into one map per row keyed by column name.
type Data struct {
	Type  Type             `json:"type"`
	Data  []map[string]any `json:"data"`
	XAxis string           `json:"x_axis,omitempty"`
	YAxis string           `json:"y_axis,omitempty"`
	Title string           `json:"title,omitempty"`
}

// Select picks a chart for the result. Rules are evaluated in strict
// priority order and the first match wins: temporal trends beat
// categorical comparison, which beats proportional breakdown.
func Select(columns []string, rows [][]any, infos []analyze.ColumnInfo) Data {
	data := reshape(columns, rows)

	var (
		dates   []analyze.ColumnInfo
		numbers []analyze.ColumnInfo
		strs    []analyze.ColumnInfo
	)
	for _, info := range infos {
		switch info.InferredType {
		case analyze.TypeDate:
			dates = append(dates, info)
		case analyze.TypeNumber:
			numbers = append(numbers, info)
		case analyze.TypeString:
			strs = append(strs, info)
		}
	}

	if len(dates) > 0 && len(numbers) > 0 {
		return Data{
			Type:  TypeLine,
			Data:  data,
			XAxis: dates[0].Name,
			YAxis: numbers[0].Name,
			Title: numbers[0].Name + " over " + dates[0].Name,
		}
	}

	for _, s := range strs {
		if s.UniqueCount <= maxBarCategories && len(numbers) > 0 {
			return Data{
				Type:  TypeBar,
				Data:  data,
				XAxis: s.Name,
				YAxis: numbers[0].Name,
				Title: numbers[0].Name + " by " + s.Name,
			}
		}
	}

	if len(numbers) == 1 && len(strs) == 1 &&
		strs[0].UniqueCount > 1 && strs[0].UniqueCount <= maxPieCategories {
		return Data{
			Type:  TypePie,
			Data:  data,
			XAxis: strs[0].Name,
			YAxis: numbers[0].Name,
			Title: numbers[0].Name + " share by " + strs[0].Name,
		}
	}

	return Data{Type: TypeNone, Data: data}
}

func reshape(columns []string, rows [][]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}
