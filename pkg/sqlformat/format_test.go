package sqlformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "   ",
			want:  "",
		},
		{
			name:  "collapses whitespace",
			input: "SELECT   a,\n\tb   FROM t",
			want:  "SELECT a, b\nFROM t",
		},
		{
			name:  "clauses on own lines",
			input: "SELECT a FROM t WHERE a > 1 GROUP BY a HAVING COUNT(*) > 1 ORDER BY a LIMIT 10",
			want:  "SELECT a\nFROM t\nWHERE a > 1\nGROUP BY a\nHAVING COUNT(*) > 1\nORDER BY a\nLIMIT 10",
		},
		{
			name:  "joins indented",
			input: "SELECT * FROM a JOIN b ON a.id = b.id LEFT JOIN c ON b.id = c.id",
			want:  "SELECT *\nFROM a\n  JOIN b ON a.id = b.id\n  LEFT JOIN c ON b.id = c.id",
		},
		{
			name:  "boolean continuations",
			input: "SELECT * FROM t WHERE a = 1 AND b = 2 OR c = 3",
			want:  "SELECT *\nFROM t\nWHERE a = 1\n    AND b = 2\n    OR c = 3",
		},
		{
			name:  "union",
			input: "SELECT a FROM t UNION ALL SELECT a FROM u",
			want:  "SELECT a\nFROM t\nUNION ALL SELECT a\nFROM u",
		},
		{
			name:  "case insensitive keywords",
			input: "select a from t where a = 1",
			want:  "select a\nfrom t\nwhere a = 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestFormatIsIdempotentOnSingleClause(t *testing.T) {
	out := Format("SELECT 1")
	assert.Equal(t, "SELECT 1", out)
	assert.Equal(t, out, Format(out))
}
