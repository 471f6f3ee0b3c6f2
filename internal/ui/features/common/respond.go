// Package common holds helpers shared by the API feature packages.
package common

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform JSON error body. Kind is set for query
// failures so clients can show kind-specific guidance.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a uniform JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// QueryError writes a query failure with its kind attached.
func QueryError(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, ErrorResponse{Error: message, Kind: kind})
}
