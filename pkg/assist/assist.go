// Package assist defines the contract with the natural-language-to-SQL
// collaborator and a bounded response cache in front of it. The core
// never validates the semantic correctness of generated SQL; safety is
// the executor's job.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request is a natural-language query plus optional schema grounding
// text (the DDL-style serialization of the loaded schema).
type Request struct {
	Query  string `json:"query"`
	Schema string `json:"schema,omitempty"`
}

// Response carries the generated SQL.
type Response struct {
	SQL string `json:"sql"`
}

// Generator turns a natural-language request into SQL.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (*Response, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// wireResponse is the collaborator's wire shape.
type wireResponse struct {
	Success bool   `json:"success"`
	SQL     string `json:"sql,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HTTPGenerator calls a remote generation endpoint with a JSON POST.
type HTTPGenerator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPGenerator creates a generator against the given endpoint.
func NewHTTPGenerator(endpoint string) *HTTPGenerator {
	return &HTTPGenerator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation endpoint returned %s", resp.Status)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !wire.Success {
		if wire.Error == "" {
			wire.Error = "generation failed"
		}
		return nil, fmt.Errorf("%s", wire.Error)
	}
	return &Response{SQL: wire.SQL}, nil
}
