package grading

import (
	"fmt"
	"strings"

	"github.com/algodrill/algodrill/internal/llm"
)

const planSystemPrompt = `You are grading a learner's written approach plan for a coding-interview practice item.
Score how well the plan covers the expected key points. Judge substance, not wording.
Respond with JSON only.`

// planScoreSchema is the structured output contract for plan scoring.
var planScoreSchema = &llm.Schema{
	Name:        "plan-score",
	Description: "Coverage score for a free-text approach plan",
	Definition: map[string]any{
		"type":                 "object",
		"required":             []any{"score", "rationale"},
		"additionalProperties": false,
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Fraction of key points the plan covers, 0.0-1.0",
			},
			"rationale": map[string]any{
				"type":        "string",
				"description": "One or two sentences explaining the score",
			},
		},
	},
}

func buildPlanPrompt(prompt string, keyPoints []string, planText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem:\n%s\n\n", prompt)
	b.WriteString("Expected key points:\n")
	for _, p := range keyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	fmt.Fprintf(&b, "\nLearner's plan:\n%s\n", planText)
	return b.String()
}
