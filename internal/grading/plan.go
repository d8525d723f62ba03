package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/algodrill/algodrill/internal/llm"
	"github.com/algodrill/algodrill/internal/model"
)

// PlanConfig tunes free-text plan scoring.
type PlanConfig struct {
	// PassScore is the coverage score at or above which a plan counts
	// as correct.
	PassScore float64

	// HeuristicCoverage is the fraction of key points the fallback
	// scorer must find in the response text.
	HeuristicCoverage float64

	MaxTokens   int
	Temperature float64
}

// DefaultPlanConfig returns scoring defaults.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		PassScore:         0.6,
		HeuristicCoverage: 0.6,
		MaxTokens:         256,
		Temperature:       0,
	}
}

// PlanScorer grades free-text approach plans. It asks the configured LLM
// for a coverage score; when the provider is absent or fails, it falls
// back to a deterministic keyword-coverage scorer so a submission never
// fails on a downstream outage.
type PlanScorer struct {
	provider llm.Provider
	config   PlanConfig
}

// NewPlanScorer creates a PlanScorer. provider may be nil.
func NewPlanScorer(provider llm.Provider, cfg PlanConfig) *PlanScorer {
	return &PlanScorer{provider: provider, config: cfg}
}

type planAnswer struct {
	KeyPoints []string `json:"key_points"`
}

type planResponse struct {
	Text string `json:"text"`
}

// scoreOutput is the raw LLM response shape.
type scoreOutput struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

func (p *PlanScorer) Evaluate(ctx context.Context, item *model.Item, response json.RawMessage) (Result, error) {
	var ans planAnswer
	if err := json.Unmarshal([]byte(item.Answer), &ans); err != nil {
		return Result{}, fmt.Errorf("item %s: bad plan answer payload: %w", item.ID, err)
	}
	var resp planResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return Result{}, fmt.Errorf("item %s: bad plan response: %w", item.ID, err)
	}

	if p.provider != nil {
		if res, err := p.scoreWithLLM(ctx, item, ans, resp.Text); err == nil {
			return res, nil
		}
		// Provider failure falls through to the deterministic scorer.
	}

	return p.scoreHeuristically(ans, resp.Text), nil
}

func (p *PlanScorer) scoreWithLLM(ctx context.Context, item *model.Item, ans planAnswer, text string) (Result, error) {
	req := llm.Request{
		System:      planSystemPrompt,
		User:        buildPlanPrompt(item.Prompt, ans.KeyPoints, text),
		Schema:      planScoreSchema,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
	}

	resp, err := p.provider.Generate(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("plan scoring: %w", err)
	}

	var out scoreOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Result{}, fmt.Errorf("parse plan score: %w", err)
	}

	return Result{
		Correct:    correct(out.Score >= p.config.PassScore),
		Method:     MethodLLM,
		Confidence: 0.9,
	}, nil
}

// scoreHeuristically counts how many key points have all their keywords
// present in the response text. Deterministic for a given payload, so
// regrading the same response always agrees with itself.
func (p *PlanScorer) scoreHeuristically(ans planAnswer, text string) Result {
	if len(ans.KeyPoints) == 0 {
		return Result{Correct: correct(false), Method: MethodHeuristic, Confidence: 0.5}
	}

	normText := normalize(text)
	covered := 0
	for _, point := range ans.KeyPoints {
		if pointCovered(normText, point) {
			covered++
		}
	}

	coverage := float64(covered) / float64(len(ans.KeyPoints))
	return Result{
		Correct:    correct(coverage >= p.config.HeuristicCoverage),
		Method:     MethodHeuristic,
		Confidence: 0.5,
	}
}

// pointCovered reports whether every significant word of the key point
// appears in the normalized response text.
func pointCovered(normText, point string) bool {
	words := strings.Fields(normalize(point))
	for _, w := range words {
		if len(w) < 3 {
			// Skip stop-word-sized tokens.
			continue
		}
		if !strings.Contains(normText, w) {
			return false
		}
	}
	return len(words) > 0
}
