package itemgen

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algodrill/algodrill/internal/llm"
	"github.com/algodrill/algodrill/internal/model"
)

func mcqResponse(prompt string) json.RawMessage {
	out, _ := json.Marshal(map[string]any{
		"prompt":       prompt,
		"answer":       map[string]any{"correct_index": 2},
		"subtype":      "opposite-ends",
		"tags":         []string{"arrays"},
		"duration_sec": 60,
	})
	return out
}

func TestGenerate_ProducesCatalogItem(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: mcqResponse("When do the two pointers cross? 0) never 1) on odd input 2) when the window is empty 3) at index 0"),
	})
	gen := New(mock, DefaultConfig())

	item, err := gen.Generate(context.Background(), GenerateInput{
		Pattern:    "two-pointers",
		Type:       model.TypeMultipleChoice,
		Difficulty: model.DifficultyMedium,
	})
	require.NoError(t, err)

	assert.Equal(t, "two-pointers", item.Pattern)
	assert.Equal(t, model.TypeMultipleChoice, item.Type)
	assert.Equal(t, model.DifficultyMedium, item.Difficulty)
	assert.True(t, strings.HasPrefix(item.ID, "two-pointers-mcq-"), "id %q should embed pattern and type", item.ID)
	assert.JSONEq(t, `{"correct_index":2}`, item.Answer)
	assert.Equal(t, "opposite-ends", item.Subtype)
	assert.Equal(t, "arrays", item.Tags)
	assert.Equal(t, 60, item.DurationSec)
}

func TestGenerate_DedupGoesIntoPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: mcqResponse("fresh prompt 0) a 1) b 2) c 3) d")})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{
		Pattern:         "sliding-window",
		Type:            model.TypeMultipleChoice,
		Difficulty:      model.DifficultyEasy,
		ExistingPrompts: []string{"old prompt one", "old prompt two"},
	})
	require.NoError(t, err)

	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].User, "old prompt one")
	assert.Contains(t, mock.Calls[0].User, "old prompt two")
}

func TestGenerate_DedupKeepsMostRecent(t *testing.T) {
	got := buildDedup([]string{"p1", "p2", "p3", "p4"}, 2)
	assert.NotContains(t, got, "p1")
	assert.NotContains(t, got, "p2")
	assert.Contains(t, got, "p3")
	assert.Contains(t, got, "p4")

	assert.Equal(t, "None", buildDedup(nil, 5))
}

func TestGenerate_RejectsBadAnswerPayload(t *testing.T) {
	out, _ := json.Marshal(map[string]any{
		"prompt":       "pick one 0) a 1) b 2) c 3) d",
		"answer":       map[string]any{"correct_index": 9},
		"subtype":      "",
		"tags":         []string{},
		"duration_sec": 45,
	})
	gen := New(llm.NewMockProvider(llm.MockResponse{Content: out}), DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{
		Pattern:    "two-pointers",
		Type:       model.TypeMultipleChoice,
		Difficulty: model.DifficultyEasy,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "answer-payload", verr.Validator)
	assert.True(t, verr.Retryable)
}

func TestGenerate_InsightNeedsNoAnswer(t *testing.T) {
	out, _ := json.Marshal(map[string]any{
		"prompt":       "Shrinking from the wider end can never discard the optimal pair.",
		"answer":       map[string]any{},
		"subtype":      "",
		"tags":         []string{"intuition"},
		"duration_sec": 20,
	})
	gen := New(llm.NewMockProvider(llm.MockResponse{Content: out}), DefaultConfig())

	item, err := gen.Generate(context.Background(), GenerateInput{
		Pattern:    "two-pointers",
		Type:       model.TypeInsight,
		Difficulty: model.DifficultyEasy,
	})
	require.NoError(t, err)
	assert.Empty(t, item.Answer)
}

func TestGenerate_UnknownItemType(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())
	_, err := gen.Generate(context.Background(), GenerateInput{Pattern: "graphs", Type: "riddle"})
	require.Error(t, err)
}

func TestStructuralValidator(t *testing.T) {
	v := &StructuralValidator{}

	tests := []struct {
		name string
		item model.Item
		ok   bool
	}{
		{"valid mcq", model.Item{Type: model.TypeMultipleChoice, Difficulty: model.DifficultyEasy, Prompt: "p", DurationSec: 60}, true},
		{"empty prompt", model.Item{Type: model.TypeMultipleChoice, Difficulty: model.DifficultyEasy}, false},
		{"overlong prompt", model.Item{Type: model.TypeMultipleChoice, Difficulty: model.DifficultyEasy, Prompt: strings.Repeat("x", 801)}, false},
		{"bad difficulty", model.Item{Type: model.TypeMultipleChoice, Difficulty: "brutal", Prompt: "p"}, false},
		{"insight skips difficulty check", model.Item{Type: model.TypeInsight, Prompt: "p"}, true},
		{"negative duration", model.Item{Type: model.TypeInsight, Prompt: "p", DurationSec: -1}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&tc.item, GenerateInput{})
			if tc.ok {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		})
	}
}

func TestAnswerPayloadValidator(t *testing.T) {
	v := &AnswerPayloadValidator{}

	tests := []struct {
		name string
		item model.Item
		ok   bool
	}{
		{"mcq ok", model.Item{Type: model.TypeMultipleChoice, Answer: `{"correct_index":1}`}, true},
		{"mcq missing index", model.Item{Type: model.TypeMultipleChoice, Answer: `{}`}, false},
		{"fitb ok", model.Item{Type: model.TypeFillInBlank, Prompt: "use a ____ pointer", Answer: `{"accepted":["slow"]}`}, true},
		{"fitb no blank", model.Item{Type: model.TypeFillInBlank, Prompt: "no blank here", Answer: `{"accepted":["slow"]}`}, false},
		{"fitb empty accepted", model.Item{Type: model.TypeFillInBlank, Prompt: "a ____", Answer: `{"accepted":[]}`}, false},
		{"ordering ok", model.Item{Type: model.TypeOrdering, Answer: `{"order":["sort","init","scan"]}`}, true},
		{"ordering too short", model.Item{Type: model.TypeOrdering, Answer: `{"order":["sort"]}`}, false},
		{"plan ok", model.Item{Type: model.TypePlan, Answer: `{"key_points":["sort first"]}`}, true},
		{"plan empty", model.Item{Type: model.TypePlan, Answer: `{"key_points":[]}`}, false},
		{"not json", model.Item{Type: model.TypePlan, Answer: `nope`}, false},
		{"insight no payload", model.Item{Type: model.TypeInsight}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&tc.item, GenerateInput{})
			if tc.ok {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		})
	}
}
