package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsBasic(t *testing.T) {
	columns := []string{"id", "name", "amount"}
	rows := [][]any{
		{int64(1), "Alice", 10.5},
		{int64(2), "Bob", 20.0},
		{int64(3), nil, 30.25},
	}

	infos := Columns(columns, rows)
	require.Len(t, infos, 3)

	assert.Equal(t, "id", infos[0].Name)
	assert.Equal(t, TypeNumber, infos[0].InferredType)
	assert.Equal(t, 3, infos[0].UniqueCount)
	assert.Equal(t, 0, infos[0].NullCount)

	assert.Equal(t, TypeString, infos[1].InferredType)
	assert.Equal(t, 1, infos[1].NullCount)
	assert.Equal(t, 2, infos[1].UniqueCount)

	assert.Equal(t, TypeNumber, infos[2].InferredType)
}

func TestInferTypeThreshold(t *testing.T) {
	// Exactly 80% numeric strings: 8 of 10 match, which meets the
	// threshold.
	meets := make([][]any, 0, 10)
	for i := 0; i < 8; i++ {
		meets = append(meets, []any{"42"})
	}
	meets = append(meets, []any{"apple"}, []any{"pear"})

	infos := Columns([]string{"v"}, meets)
	assert.Equal(t, TypeNumber, infos[0].InferredType)

	// 79 of 100 match: below the threshold, stays string.
	below := make([][]any, 0, 100)
	for i := 0; i < 79; i++ {
		below = append(below, []any{"42"})
	}
	for i := 0; i < 21; i++ {
		below = append(below, []any{"word"})
	}

	infos = Columns([]string{"v"}, below)
	assert.Equal(t, TypeString, infos[0].InferredType)
}

func TestInferTypePriority(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   ColumnType
	}{
		{"booleans", []any{true, false, true}, TypeBoolean},
		{"boolean strings any case", []any{"TRUE", "False", "true"}, TypeBoolean},
		{"integers", []any{int64(1), int64(2)}, TypeNumber},
		{"numeric strings", []any{"1", "2.5", " 3 "}, TypeNumber},
		{"iso dates", []any{"2024-01-01", "2024-02-15"}, TypeDate},
		{"datetimes", []any{"2024-01-01 10:30:00", "2024-01-02T08:00:00"}, TypeDate},
		{"slash dates", []any{"2024/01/01", "01/02/2024"}, TypeDate},
		{"plain text", []any{"alpha", "beta"}, TypeString},
		{"mixed below threshold", []any{"1", "x", "y", "z"}, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]any, len(tt.values))
			for i, v := range tt.values {
				rows[i] = []any{v}
			}
			infos := Columns([]string{"v"}, rows)
			assert.Equal(t, tt.want, infos[0].InferredType)
		})
	}
}

func TestAllNullColumn(t *testing.T) {
	rows := [][]any{{nil}, {nil}, {nil}}

	infos := Columns([]string{"v"}, rows)
	assert.Equal(t, TypeString, infos[0].InferredType)
	assert.Equal(t, 3, infos[0].NullCount)
	assert.Equal(t, 0, infos[0].UniqueCount)
	assert.Empty(t, infos[0].SampleValues)
}

func TestSampleValuesKeepDuplicates(t *testing.T) {
	rows := [][]any{{"a"}, {"a"}, {"b"}, {"a"}, {"c"}, {"d"}, {"e"}}

	infos := Columns([]string{"v"}, rows)
	assert.Equal(t, []any{"a", "a", "b", "a", "c"}, infos[0].SampleValues)
	assert.Equal(t, 5, infos[0].UniqueCount)
}

func TestParseDate(t *testing.T) {
	parsed, ok := ParseDate("2024-03-15")
	require.True(t, ok)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())

	_, ok = ParseDate("not a date")
	assert.False(t, ok)

	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestAsNumber(t *testing.T) {
	n, ok := AsNumber(int64(7))
	require.True(t, ok)
	assert.Equal(t, 7.0, n)

	n, ok = AsNumber("3.14")
	require.True(t, ok)
	assert.InDelta(t, 3.14, n, 0.001)

	_, ok = AsNumber("abc")
	assert.False(t, ok)

	_, ok = AsNumber(nil)
	assert.False(t, ok)
}
