package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/algodrill/algodrill/internal/model"
)

// multipleChoiceEvaluator grades by index equality.
type multipleChoiceEvaluator struct{}

type mcqAnswer struct {
	CorrectIndex int `json:"correct_index"`
}

type mcqResponse struct {
	SelectedIndex int `json:"selected_index"`
}

func (multipleChoiceEvaluator) Evaluate(_ context.Context, item *model.Item, response json.RawMessage) (Result, error) {
	var ans mcqAnswer
	if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
		return Result{}, fmt.Errorf("item %s: bad mcq answer payload: %w", item.ID, err)
	}
	var resp mcqResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return Result{}, fmt.Errorf("item %s: bad mcq response: %w", item.ID, err)
	}
	return Result{
		Correct:    correct(resp.SelectedIndex == ans.CorrectIndex),
		Method:     MethodExact,
		Confidence: 1.0,
	}, nil
}

// fillInBlankEvaluator grades by normalized set membership: the response
// must match one of the accepted answers after normalization.
type fillInBlankEvaluator struct{}

type fitbAnswer struct {
	Accepted []string `json:"accepted"`
}

type fitbResponse struct {
	Text string `json:"text"`
}

func (fillInBlankEvaluator) Evaluate(_ context.Context, item *model.Item, response json.RawMessage) (Result, error) {
	var ans fitbAnswer
	if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
		return Result{}, fmt.Errorf("item %s: bad fitb answer payload: %w", item.ID, err)
	}
	var resp fitbResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return Result{}, fmt.Errorf("item %s: bad fitb response: %w", item.ID, err)
	}

	got := normalize(resp.Text)
	match := false
	for _, accepted := range ans.Accepted {
		if normalize(accepted) == got {
			match = true
			break
		}
	}
	return Result{Correct: correct(match), Method: MethodExact, Confidence: 1.0}, nil
}

// orderingEvaluator grades by full sequence equality.
type orderingEvaluator struct{}

type orderingPayload struct {
	Order []string `json:"order"`
}

func (orderingEvaluator) Evaluate(_ context.Context, item *model.Item, response json.RawMessage) (Result, error) {
	var ans orderingPayload
	if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
		return Result{}, fmt.Errorf("item %s: bad ordering answer payload: %w", item.ID, err)
	}
	var resp orderingPayload
	if err := json.Unmarshal(response, &resp); err != nil {
		return Result{}, fmt.Errorf("item %s: bad ordering response: %w", item.ID, err)
	}

	match := len(resp.Order) == len(ans.Order)
	if match {
		for i := range ans.Order {
			if resp.Order[i] != ans.Order[i] {
				match = false
				break
			}
		}
	}
	return Result{Correct: correct(match), Method: MethodExact, Confidence: 1.0}, nil
}

// insightEvaluator never grades; insight items are explanatory pacing
// content and correctness stays nil.
type insightEvaluator struct{}

func (insightEvaluator) Evaluate(_ context.Context, _ *model.Item, _ json.RawMessage) (Result, error) {
	return Result{Correct: nil, Method: MethodNone, Confidence: 0}, nil
}

// normalize lowercases, trims, and collapses runs of whitespace so
// " Two  Pointers " and "two pointers" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
