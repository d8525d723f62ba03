// Package itemgen generates practice items for a pattern with an LLM
// and runs them through a validator chain before they reach the catalog.
package itemgen

import (
	"context"
	"fmt"

	"github.com/algodrill/algodrill/internal/model"
)

// Generator produces catalog-ready practice items.
type Generator interface {
	// Generate produces a single validated item for the given input.
	Generate(ctx context.Context, input GenerateInput) (*model.Item, error)
}

// GenerateInput holds all context needed to generate one item.
type GenerateInput struct {
	// Pattern is the coding-interview pattern the item drills,
	// e.g. "two-pointers".
	Pattern string

	// Type selects what kind of item to produce.
	Type model.ItemType

	// Difficulty is the requested difficulty band.
	Difficulty model.Difficulty

	// ExistingPrompts contains prompts already in the catalog for this
	// pattern, so the model does not repeat them.
	ExistingPrompts []string
}

// Validator checks a generated item before it is accepted.
// Implementations must be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages.
	Name() string

	// Validate returns nil if the item passes the check.
	Validate(item *model.Item, input GenerateInput) *ValidationError
}

// ValidationError describes why a generated item was rejected.
type ValidationError struct {
	Validator string
	Message   string
	// Retryable reports whether regeneration is likely to fix this.
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
