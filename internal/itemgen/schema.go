package itemgen

import "github.com/algodrill/algodrill/internal/llm"

// ItemSchema defines the JSON schema for LLM item generation responses.
var ItemSchema = &llm.Schema{
	Name:        "drill-item",
	Description: "A single practice item with its grading payload",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The item text shown to the learner, in plain ASCII",
			},
			"answer": map[string]any{
				"type":        "object",
				"description": "Grading payload for the item type: {\"correct_index\": n} for mcq, {\"accepted\": [strings]} for fitb, {\"order\": [step labels]} for ordering, {\"key_points\": [strings]} for plan. Empty object for insight.",
			},
			"subtype": map[string]any{
				"type":        "string",
				"description": "Optional finer-grained category within the pattern, e.g. \"opposite-ends\"",
			},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Short lowercase topic tags",
			},
			"duration_sec": map[string]any{
				"type":        "integer",
				"minimum":     10,
				"maximum":     300,
				"description": "Suggested time budget in seconds",
			},
		},
		"required":             []any{"prompt", "answer", "subtype", "tags", "duration_sec"},
		"additionalProperties": false,
	},
}
