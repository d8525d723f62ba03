package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsAfterTransientFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, fastRetry(3))

	resp, err := p.Generate(context.Background(), Request{User: "score this"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider() // empty queue always errors
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(context.Background(), Request{User: "x"})
	require.Error(t, err)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("schema mismatch")}}
	mock := NewMockProvider(bad, bad, bad)
	p := WithRetry(mock, fastRetry(5))

	_, err := p.Generate(context.Background(), Request{User: "x"})
	require.Error(t, err)
	assert.Equal(t, 2, mock.CallCount(), "schema failures get exactly one retry")
}

func TestRetry_ContextCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := NewMockProvider()
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(ctx, Request{User: "x"})
	require.Error(t, err)
	assert.LessOrEqual(t, mock.CallCount(), 2)
}

func TestValidateResponse(t *testing.T) {
	schema := &Schema{
		Name: "score-test",
		Definition: map[string]any{
			"type":                 "object",
			"required":             []any{"score"},
			"additionalProperties": false,
			"properties": map[string]any{
				"score": map[string]any{"type": "number"},
			},
		},
	}

	assert.NoError(t, validateResponse(schema, json.RawMessage(`{"score":0.8}`)))
	assert.Error(t, validateResponse(schema, json.RawMessage(`{"wrong":1}`)))
	assert.Error(t, validateResponse(schema, json.RawMessage(`not json`)))
	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}
