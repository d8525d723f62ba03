// Package grading evaluates learner responses against stored answers.
// Each item type has its own evaluator behind a shared interface; the
// registry dispatches on the item's type tag.
package grading

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/algodrill/algodrill/internal/model"
)

// Scoring method markers recorded on results.
const (
	MethodExact     = "exact"
	MethodLLM       = "llm"
	MethodHeuristic = "heuristic"
	MethodNone      = "none"
)

// Result is the outcome of evaluating one response.
type Result struct {
	// Correct is nil for ungraded (insight) items.
	Correct *bool

	// Method records how the result was produced.
	Method string

	// Confidence is 1.0 for exact matching; plan scoring reports lower
	// confidence, especially on the heuristic fallback path.
	Confidence float64
}

// Evaluator grades one response for one item type.
type Evaluator interface {
	Evaluate(ctx context.Context, item *model.Item, response json.RawMessage) (Result, error)
}

// Registry dispatches evaluation by item type.
type Registry struct {
	evaluators map[model.ItemType]Evaluator
}

// NewRegistry builds the default registry. planScorer may be nil, in
// which case plan items use the heuristic scorer only.
func NewRegistry(planScorer *PlanScorer) *Registry {
	if planScorer == nil {
		planScorer = NewPlanScorer(nil, DefaultPlanConfig())
	}
	return &Registry{
		evaluators: map[model.ItemType]Evaluator{
			model.TypeMultipleChoice: multipleChoiceEvaluator{},
			model.TypeFillInBlank:    fillInBlankEvaluator{},
			model.TypeOrdering:       orderingEvaluator{},
			model.TypePlan:           planScorer,
			model.TypeInsight:        insightEvaluator{},
		},
	}
}

// Evaluate grades a response via the item's type evaluator.
func (r *Registry) Evaluate(ctx context.Context, item *model.Item, response json.RawMessage) (Result, error) {
	ev, ok := r.evaluators[item.Type]
	if !ok {
		return Result{}, fmt.Errorf("no evaluator for item type %q", item.Type)
	}
	return ev.Evaluate(ctx, item, response)
}

func correct(v bool) *bool { return &v }
