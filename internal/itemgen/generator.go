package itemgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/algodrill/algodrill/internal/llm"
	"github.com/algodrill/algodrill/internal/model"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates an LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// itemOutput is the raw LLM response before validation.
type itemOutput struct {
	Prompt      string          `json:"prompt"`
	Answer      json.RawMessage `json:"answer"`
	Subtype     string          `json:"subtype"`
	Tags        []string        `json:"tags"`
	DurationSec int             `json:"duration_sec"`
}

// Generate produces a single validated item for the given input.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*model.Item, error) {
	if _, err := model.ParseItemType(string(input.Type)); err != nil {
		return nil, fmt.Errorf("generate item: %w", err)
	}

	req := llm.Request{
		System:      systemPrompt,
		User:        buildUserMessage(input, g.config),
		Schema:      ItemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate item: %w", err)
	}

	var raw itemOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("parse generated item: %w", err)
	}

	answer := ""
	if input.Type != model.TypeInsight && len(raw.Answer) > 0 {
		answer = string(raw.Answer)
	}
	item := &model.Item{
		ID:          fmt.Sprintf("%s-%s-%s", input.Pattern, input.Type, uuid.NewString()[:8]),
		Pattern:     input.Pattern,
		Type:        input.Type,
		Difficulty:  input.Difficulty,
		Prompt:      raw.Prompt,
		Answer:      answer,
		Subtype:     raw.Subtype,
		Tags:        strings.Join(raw.Tags, ","),
		DurationSec: raw.DurationSec,
	}
	for _, v := range g.config.Validators {
		if verr := v.Validate(item, input); verr != nil {
			return nil, verr
		}
	}
	return item, nil
}
