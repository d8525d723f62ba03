package itemgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/algodrill/algodrill/internal/model"
)

// StructuralValidator checks field presence, length limits, and enums.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(item *model.Item, _ GenerateInput) *ValidationError {
	if item.Prompt == "" {
		return &ValidationError{Validator: v.Name(), Message: "prompt is empty", Retryable: true}
	}
	if len(item.Prompt) > 800 {
		return &ValidationError{Validator: v.Name(), Message: "prompt exceeds 800 characters", Retryable: true}
	}
	if item.Type != model.TypeInsight {
		switch item.Difficulty {
		case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		default:
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("difficulty %q is not easy, medium, or hard", item.Difficulty),
				Retryable: false,
			}
		}
	}
	if item.DurationSec < 0 || item.DurationSec > 600 {
		return &ValidationError{Validator: v.Name(), Message: "duration_sec out of range", Retryable: true}
	}
	return nil
}

// AnswerPayloadValidator checks that the answer payload parses and fits
// the item type's grading contract, so a bad generation is rejected at
// authoring time instead of failing the learner's first submission.
type AnswerPayloadValidator struct{}

func (v *AnswerPayloadValidator) Name() string { return "answer-payload" }

func (v *AnswerPayloadValidator) Validate(item *model.Item, _ GenerateInput) *ValidationError {
	if item.Type == model.TypeInsight {
		return nil
	}
	if strings.TrimSpace(item.Answer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "answer payload is empty", Retryable: true}
	}

	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}

	switch item.Type {
	case model.TypeMultipleChoice:
		var ans struct {
			CorrectIndex *int `json:"correct_index"`
		}
		if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
			return fail("answer is not valid JSON")
		}
		if ans.CorrectIndex == nil || *ans.CorrectIndex < 0 || *ans.CorrectIndex > 3 {
			return fail("correct_index must be 0-3")
		}
	case model.TypeFillInBlank:
		var ans struct {
			Accepted []string `json:"accepted"`
		}
		if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
			return fail("answer is not valid JSON")
		}
		if len(ans.Accepted) == 0 {
			return fail("accepted list is empty")
		}
		if !strings.Contains(item.Prompt, "____") {
			return fail("prompt has no blank")
		}
	case model.TypeOrdering:
		var ans struct {
			Order []string `json:"order"`
		}
		if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
			return fail("answer is not valid JSON")
		}
		if len(ans.Order) < 2 {
			return fail("order must list at least 2 steps")
		}
	case model.TypePlan:
		var ans struct {
			KeyPoints []string `json:"key_points"`
		}
		if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
			return fail("answer is not valid JSON")
		}
		if len(ans.KeyPoints) == 0 {
			return fail("key_points list is empty")
		}
	}
	return nil
}
