// Package assist exposes the natural-language-to-SQL collaborator over
// the web API.
package assist

// Request is a natural-language question about the loaded database.
type Request struct {
	Query string `json:"query"`
}

// Response carries the generated SQL for the editor to adopt.
type Response struct {
	SQL string `json:"sql"`
}
