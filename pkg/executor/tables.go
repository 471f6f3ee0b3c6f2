package executor

import "regexp"

// tableRefPattern matches an identifier immediately following FROM or
// JOIN. Quoted identifiers, schema-qualified names and CTE bodies are
// not specially handled; the result is display-only.
var tableRefPattern = regexp.MustCompile(`(?i)\b(?:from|join)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// extractTables returns the table names referenced by the statement,
// case-preserving, de-duplicated, in order of first appearance.
func extractTables(query string) []string {
	matches := tableRefPattern.FindAllStringSubmatch(query, -1)
	tables := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tables = append(tables, name)
	}
	return tables
}
