// Package attempt runs the submission pipeline: grade resolution,
// response evaluation, attempt persistence, and the scheduling update
// that decides when the item comes back.
package attempt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/algodrill/algodrill/internal/grading"
	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/spacedrep"
	"github.com/algodrill/algodrill/internal/store"
)

// SubmitInput carries one attempt from the caller into the pipeline.
type SubmitInput struct {
	UserID   string
	ItemID   string
	Grade    model.Grade
	Feedback string

	// Response is the structured answer payload for auto-evaluation.
	// Empty means the attempt is self-graded only.
	Response json.RawMessage

	TimeMs   int
	TimedOut bool
	// Idle is how long the learner had been inactive when the timer
	// expired. Ignored unless TimedOut is set.
	Idle time.Duration
}

// Result reports what the pipeline recorded.
type Result struct {
	AttemptID string
	// Grade is the effective grade after timeout resolution.
	Grade model.Grade
	// Correct is nil when the item is ungraded or no response payload
	// was submitted.
	Correct *bool
	Method  string
	// NextDue is nil for insight items, which carry no schedule.
	NextDue *time.Time
}

// Pipeline persists attempts and advances per-item scheduling state.
type Pipeline struct {
	content  store.ContentRepo
	progress store.ProgressRepo
	attempts store.AttemptRepo
	registry *grading.Registry
	policy   TimeoutPolicy

	locks keyedMutex
	now   func() time.Time
}

// NewPipeline wires a Pipeline over the given stores and evaluator
// registry.
func NewPipeline(content store.ContentRepo, progress store.ProgressRepo, attempts store.AttemptRepo, registry *grading.Registry, policy TimeoutPolicy) *Pipeline {
	return &Pipeline{
		content:  content,
		progress: progress,
		attempts: attempts,
		registry: registry,
		policy:   policy,
		now:      time.Now,
	}
}

// Submit records one attempt. The write sequence is: resolve the
// effective grade, evaluate the response if one was given, persist the
// attempt row, then advance the item's schedule under a per-user/item
// lock so concurrent submissions serialize into a single coherent
// progress record. Insight items stop after the attempt row.
func (p *Pipeline) Submit(ctx context.Context, in SubmitInput) (*Result, error) {
	item, err := p.content.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("submit attempt: %w", err)
	}

	grade := p.policy.Resolve(in.Grade, in.TimedOut, in.Idle)
	if !grade.Valid() {
		return nil, fmt.Errorf("submit attempt for %s: %w: got %d", in.ItemID, spacedrep.ErrInvalidGrade, grade)
	}

	eval := grading.Result{Method: grading.MethodNone}
	if len(in.Response) > 0 {
		eval, err = p.registry.Evaluate(ctx, item, in.Response)
		if err != nil {
			return nil, fmt.Errorf("evaluate response for %s: %w", in.ItemID, err)
		}
	}

	now := p.now()
	att := &model.Attempt{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		ItemID:    in.ItemID,
		Grade:     grade,
		Feedback:  in.Feedback,
		TimeMs:    in.TimeMs,
		TimedOut:  in.TimedOut,
		Response:  string(in.Response),
		Correct:   eval.Correct,
		CreatedAt: now,
	}
	if err := p.attempts.CreateAttempt(ctx, att); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	res := &Result{
		AttemptID: att.ID,
		Grade:     grade,
		Correct:   eval.Correct,
		Method:    eval.Method,
	}
	if item.Type == model.TypeInsight {
		return res, nil
	}

	next, err := p.advance(ctx, in.UserID, in.ItemID, grade, now)
	if err != nil {
		return nil, err
	}
	res.NextDue = &next.NextDue
	return res, nil
}

// advance performs the read-modify-write on the progress record under
// the user/item lock.
func (p *Pipeline) advance(ctx context.Context, userID, itemID string, grade model.Grade, now time.Time) (model.ProgressRecord, error) {
	unlock := p.locks.lock(userID + "/" + itemID)
	defer unlock()

	rec, err := p.progress.GetProgress(ctx, userID, itemID)
	if err != nil {
		return model.ProgressRecord{}, fmt.Errorf("load progress for %s: %w", itemID, err)
	}
	next, err := spacedrep.Advance(rec, userID, itemID, grade, now)
	if err != nil {
		return model.ProgressRecord{}, err
	}
	if err := p.progress.UpsertProgress(ctx, next); err != nil {
		return model.ProgressRecord{}, fmt.Errorf("save progress for %s: %w", itemID, err)
	}
	return next, nil
}
