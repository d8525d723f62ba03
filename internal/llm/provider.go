// Package llm abstracts the LLM providers used for plan scoring and
// item generation. Providers return schema-validated JSON; callers
// never touch SDK types directly.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends a prompt to an LLM and returns structured JSON.
type Provider interface {
	// Generate sends the request and returns the validated response.
	// When req.Schema is set the provider uses its native structured
	// output mechanism and the response Content conforms to the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider targets.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// User is the user message. All calls are single-turn.
	User string

	// Schema is the JSON Schema the response must conform to. Nil means
	// raw text.
	Schema *Schema

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature controls randomness; 0 is deterministic.
	Temperature float64
}

// Schema names and defines the JSON structure expected from the model.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is validated JSON when a Schema was requested.
	Content json.RawMessage

	// Model is the model that actually served the request.
	Model string
}
