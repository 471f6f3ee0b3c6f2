package executor

import (
	"regexp"
	"strings"
)

// SafetyChecker decides whether a SQL statement may be executed.
// The default implementation is a textual denylist; it can be swapped
// for a parser-based checker without touching the executor.
type SafetyChecker interface {
	// Check returns a non-nil *QueryError when the statement is rejected.
	Check(query string) *QueryError
}

// mutatingKeywords is the fixed denylist of statement keywords that are
// never allowed against a loaded database.
var mutatingKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE",
}

// KeywordDenylist rejects any statement containing a mutating keyword.
// This is a best-effort textual scan, not a parser: a column literally
// named "update" is rejected, and a mutation hidden inside a string
// literal evaluated by the engine would not be caught. Display and
// safety layers must not treat it as authoritative access control.
type KeywordDenylist struct {
	pattern *regexp.Regexp
}

// NewKeywordDenylist returns a checker over the fixed mutating-keyword set.
func NewKeywordDenylist() *KeywordDenylist {
	expr := `(?i)\b(?:` + strings.Join(mutatingKeywords, "|") + `)\b`
	return &KeywordDenylist{pattern: regexp.MustCompile(expr)}
}

// Check implements SafetyChecker.
func (d *KeywordDenylist) Check(query string) *QueryError {
	if d.pattern.MatchString(query) {
		return &QueryError{
			Kind:    ErrorSyntax,
			Message: "Only SELECT queries are allowed for safety",
		}
	}
	return nil
}
