// Package session builds practice batches and manages session lifecycle:
// pool selection under a difficulty-weighted sampling policy, the served
// set, and end-of-session metrics.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/algodrill/algodrill/internal/mastery"
	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/store"
)

// ErrPatternDisabled is returned when a build targets a pattern the
// config has switched off.
var ErrPatternDisabled = errors.New("pattern is not enabled")

// Builder selects a bounded, duplicate-free batch of items for one
// build call, mixing due, recently-missed, and new pools.
type Builder struct {
	content   store.ContentRepo
	progress  store.ProgressRepo
	estimator *mastery.Estimator
	cfg       Config

	rng *rand.Rand
	now func() time.Time
}

// NewBuilder creates a Builder over the given collaborators.
func NewBuilder(content store.ContentRepo, progress store.ProgressRepo, sessions store.SessionRepo, cfg Config) *Builder {
	return &Builder{
		content:   content,
		progress:  progress,
		estimator: mastery.NewEstimator(sessions),
		cfg:       cfg,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:       time.Now,
	}
}

// Build returns an ordered batch of at most size items for the pattern,
// none of which appear in exclude. Pools are drawn in priority order
// (due, recent-miss, new) and exhausted pools simply yield fewer items.
func (b *Builder) Build(ctx context.Context, userID, pattern string, size int, exclude []string) ([]model.Item, error) {
	if size <= 0 {
		return nil, nil
	}
	if !b.cfg.PatternEnabled(pattern) {
		return nil, fmt.Errorf("build for %q: %w", pattern, ErrPatternDisabled)
	}

	profile, err := b.estimator.ProfileFor(ctx, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	now := b.now()
	dueBudget := shareOf(size, b.cfg.DueShare)
	missBudget := shareOf(size, b.cfg.MissShare)

	duePool, err := b.duePool(ctx, userID, pattern, now, exclude, profile, dueBudget)
	if err != nil {
		return nil, err
	}
	missPool, err := b.missPool(ctx, userID, pattern, now, exclude, profile, missBudget)
	if err != nil {
		return nil, err
	}

	// First occurrence wins, preserving pool priority: due > miss > new.
	batch := dedupe(append(duePool, missPool...), exclude)

	newBudget := size - len(batch)
	if newBudget > b.cfg.NewItemCap {
		newBudget = b.cfg.NewItemCap
	}
	if newBudget > 0 {
		newPool, err := b.newPool(ctx, userID, pattern, exclude, newBudget)
		if err != nil {
			return nil, err
		}
		batch = dedupe(append(batch, newPool...), exclude)
	}

	if len(batch) > size {
		batch = batch[:size]
	}
	return b.interleaveInsights(batch), nil
}

func (b *Builder) duePool(ctx context.Context, userID, pattern string, now time.Time, exclude []string, profile mastery.Profile, budget int) ([]model.Item, error) {
	due, err := b.progress.FindDueItems(ctx, userID, pattern, now, exclude)
	if err != nil {
		return nil, fmt.Errorf("due pool: %w", err)
	}
	items := make([]model.Item, len(due))
	for i, d := range due {
		items[i] = d.Item
	}
	return b.weightedSample(items, profile, budget), nil
}

func (b *Builder) missPool(ctx context.Context, userID, pattern string, now time.Time, exclude []string, profile mastery.Profile, budget int) ([]model.Item, error) {
	misses, err := b.progress.FindRecentMisses(ctx, userID, pattern, now.Add(-b.cfg.MissWindow), exclude)
	if err != nil {
		return nil, fmt.Errorf("miss pool: %w", err)
	}
	seen := make(map[string]bool, len(misses))
	var items []model.Item
	for _, m := range misses {
		if seen[m.Item.ID] {
			continue
		}
		seen[m.Item.ID] = true
		items = append(items, m.Item)
	}
	return b.weightedSample(items, profile, budget), nil
}

// newPool fills Easy first, then Medium, reaching Hard only if slots
// remain, so a new learner isn't front-loaded with hard material.
func (b *Builder) newPool(ctx context.Context, userID, pattern string, exclude []string, budget int) ([]model.Item, error) {
	fresh, err := b.progress.FindItemsWithoutProgress(ctx, userID, pattern, exclude)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	byBand := map[model.Difficulty][]model.Item{}
	for _, it := range fresh {
		byBand[it.Difficulty] = append(byBand[it.Difficulty], it)
	}

	var out []model.Item
	for _, band := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		items := byBand[band]
		b.rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		for _, it := range items {
			if len(out) >= budget {
				return out, nil
			}
			out = append(out, it)
		}
	}
	return out, nil
}

// weightedSample draws up to n items without replacement, each item
// weighted by its difficulty's profile weight. Ties within a weight
// bucket resolve by uniform randomness.
func (b *Builder) weightedSample(items []model.Item, profile mastery.Profile, n int) []model.Item {
	if n <= 0 || len(items) == 0 {
		return nil
	}

	pool := append([]model.Item(nil), items...)
	var out []model.Item
	for len(out) < n && len(pool) > 0 {
		total := 0.0
		for _, it := range pool {
			total += profile.Weight(it.Difficulty)
		}
		if total <= 0 {
			break
		}

		r := b.rng.Float64() * total
		idx := len(pool) - 1
		for i, it := range pool {
			r -= profile.Weight(it.Difficulty)
			if r < 0 {
				idx = i
				break
			}
		}
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return out
}

// interleaveInsights pulls insight items out of the sequence and
// resplices them every few graded items. Insights are pacing content,
// not competitively sampled material, so they never displace the batch.
func (b *Builder) interleaveInsights(batch []model.Item) []model.Item {
	var insights, graded []model.Item
	for _, it := range batch {
		if it.Type == model.TypeInsight {
			insights = append(insights, it)
		} else {
			graded = append(graded, it)
		}
	}
	if len(insights) == 0 {
		return batch
	}

	out := make([]model.Item, 0, len(batch))
	sinceInsight := 0
	gap := b.nextGap()
	for _, it := range graded {
		out = append(out, it)
		sinceInsight++
		if sinceInsight >= gap && len(insights) > 0 {
			out = append(out, insights[0])
			insights = insights[1:]
			sinceInsight = 0
			gap = b.nextGap()
		}
	}
	// Leftover insights trail the batch.
	return append(out, insights...)
}

func (b *Builder) nextGap() int {
	span := b.cfg.InsightGapMax - b.cfg.InsightGapMin
	if span <= 0 {
		return b.cfg.InsightGapMin
	}
	return b.cfg.InsightGapMin + b.rng.IntN(span+1)
}

// dedupe drops repeated ids (first occurrence wins) and anything in the
// exclude set.
func dedupe(items []model.Item, exclude []string) []model.Item {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	seen := make(map[string]bool, len(items))
	var out []model.Item
	for _, it := range items {
		if seen[it.ID] || excluded[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

func shareOf(size int, share float64) int {
	n := int(float64(size)*share + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
