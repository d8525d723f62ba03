package grading

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algodrill/algodrill/internal/model"
)

func evalItem(typ model.ItemType, answer string) *model.Item {
	return &model.Item{ID: "i1", Pattern: "two-pointers", Type: typ, Prompt: "p", Answer: answer}
}

func TestRegistry_MultipleChoice(t *testing.T) {
	reg := NewRegistry(nil)
	item := evalItem(model.TypeMultipleChoice, `{"correct_index":2}`)

	res, err := reg.Evaluate(context.Background(), item, json.RawMessage(`{"selected_index":2}`))
	require.NoError(t, err)
	require.NotNil(t, res.Correct)
	assert.True(t, *res.Correct)
	assert.Equal(t, MethodExact, res.Method)

	res, err = reg.Evaluate(context.Background(), item, json.RawMessage(`{"selected_index":0}`))
	require.NoError(t, err)
	assert.False(t, *res.Correct)
}

func TestRegistry_FillInBlank_NormalizedMembership(t *testing.T) {
	reg := NewRegistry(nil)
	item := evalItem(model.TypeFillInBlank, `{"accepted":["two pointers","opposite ends"]}`)

	tests := []struct {
		text string
		want bool
	}{
		{"two pointers", true},
		{"  Two   POINTERS ", true},
		{"opposite ends", true},
		{"binary search", false},
		{"", false},
	}
	for _, tt := range tests {
		resp, _ := json.Marshal(map[string]string{"text": tt.text})
		res, err := reg.Evaluate(context.Background(), item, resp)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, *res.Correct, "text %q", tt.text)
	}
}

func TestRegistry_Ordering_SequenceEquality(t *testing.T) {
	reg := NewRegistry(nil)
	item := evalItem(model.TypeOrdering, `{"order":["sort","init","scan"]}`)

	res, err := reg.Evaluate(context.Background(), item, json.RawMessage(`{"order":["sort","init","scan"]}`))
	require.NoError(t, err)
	assert.True(t, *res.Correct)

	res, err = reg.Evaluate(context.Background(), item, json.RawMessage(`{"order":["init","sort","scan"]}`))
	require.NoError(t, err)
	assert.False(t, *res.Correct)

	res, err = reg.Evaluate(context.Background(), item, json.RawMessage(`{"order":["sort","init"]}`))
	require.NoError(t, err)
	assert.False(t, *res.Correct, "shorter sequence is not a match")
}

func TestRegistry_InsightNeverGraded(t *testing.T) {
	reg := NewRegistry(nil)
	item := evalItem(model.TypeInsight, "")

	res, err := reg.Evaluate(context.Background(), item, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Nil(t, res.Correct)
	assert.Equal(t, MethodNone, res.Method)
}

func TestRegistry_UnknownType(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Evaluate(context.Background(), &model.Item{ID: "x", Type: "riddle"}, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestRegistry_GradingIsIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	item := evalItem(model.TypePlan, `{"key_points":["sort the array","move pointers inward"]}`)
	resp := json.RawMessage(`{"text":"first sort the array, then move both pointers inward"}`)

	a, err := reg.Evaluate(context.Background(), item, resp)
	require.NoError(t, err)
	b, err := reg.Evaluate(context.Background(), item, resp)
	require.NoError(t, err)
	assert.Equal(t, *a.Correct, *b.Correct)
	assert.Equal(t, a.Method, b.Method)
}
