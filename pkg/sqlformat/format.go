// Package sqlformat pretty-prints SQL text for display. It is purely
// textual: keywords are detected by regex, so text inside string
// literals or quoted identifiers can misfire. That is acceptable for a
// display-only formatter and documented as such.
package sqlformat

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)

	// Major clause keywords start a new unindented line.
	clauses = regexp.MustCompile(`(?i)\s+(FROM|WHERE|GROUP BY|HAVING|ORDER BY|LIMIT|OFFSET|UNION ALL|UNION|EXCEPT|INTERSECT)\b`)

	// Join keywords start a new line indented one level.
	joins = regexp.MustCompile(`(?i)\s+((?:LEFT|RIGHT|FULL|INNER|CROSS)(?:\s+OUTER)?\s+JOIN|JOIN)\b`)

	// Boolean continuations indent two levels.
	booleans = regexp.MustCompile(`(?i)\s+(AND|OR)\b`)
)

const indent = "  "

// Format pretty-prints raw SQL: one line per major clause, joins
// indented one level, AND/OR continuations two.
func Format(query string) string {
	s := strings.TrimSpace(query)
	if s == "" {
		return ""
	}
	s = whitespace.ReplaceAllString(s, " ")
	s = booleans.ReplaceAllString(s, "\n"+indent+indent+"$1")
	s = joins.ReplaceAllString(s, "\n"+indent+"$1")
	s = clauses.ReplaceAllString(s, "\n$1")
	return s
}
