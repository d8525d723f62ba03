package spacedrep

import (
	"fmt"
	"math"
	"time"

	"github.com/algodrill/algodrill/internal/model"
)

// ErrInvalidGrade is returned when a grade outside {1,3,5} reaches the
// scheduler. This is a programming error in the caller, not learner input.
var ErrInvalidGrade = fmt.Errorf("grade must be one of 1, 3, 5")

// NewRecord returns the default progress state for an item the user has
// never attempted. NextDue is "now" so the item is immediately reviewable.
func NewRecord(userID, itemID string, now time.Time) model.ProgressRecord {
	return model.ProgressRecord{
		UserID:   userID,
		ItemID:   itemID,
		Easiness: DefaultEasiness,
		NextDue:  now,
	}
}

// Advance computes the next progress state from the current one and a
// grade. It is a pure function: no I/O, no randomness, no clock reads.
// A nil rec means "first attempt" and starts from the default record.
//
// Grade semantics: 1 grows the interval aggressively and relaxes
// difficulty pressure, 3 follows normal SM-2 growth, 5 is a lapse that
// resets repetitions and forces the item due again today.
func Advance(rec *model.ProgressRecord, userID, itemID string, grade model.Grade, now time.Time) (model.ProgressRecord, error) {
	if !grade.Valid() {
		return model.ProgressRecord{}, fmt.Errorf("advance %s/%s: %w: got %d", userID, itemID, ErrInvalidGrade, grade)
	}

	next := NewRecord(userID, itemID, now)
	if rec != nil {
		next = *rec
		next.UserID = userID
		next.ItemID = itemID
	}
	next.LastGrade = grade

	next.Easiness = adjustEasiness(next.Easiness, grade)

	if grade == model.GradeConfusing {
		// Lapse: start the ladder over and resurface the item today,
		// so the recent-miss pool can pick it up in the same session day.
		next.Repetitions = 0
		next.IntervalDays = 0
		next.NextDue = now
		return next, nil
	}

	interval := nextInterval(next.Repetitions, next.IntervalDays, next.Easiness)
	if grade == model.GradeTooEasy {
		interval = int(math.Round(float64(interval) * EasyBonus))
	}
	if interval > MaxIntervalDays {
		interval = MaxIntervalDays
	}
	if interval < 1 {
		interval = 1
	}

	next.IntervalDays = interval
	next.Repetitions++
	next.NextDue = now.AddDate(0, 0, interval)
	return next, nil
}

// adjustEasiness applies the SM-2 additive update, mapping the 3-level
// grade onto the 0-5 quality scale (1 -> perfect recall, 3 -> correct
// with effort, 5 -> failure) and clamping at the floor.
func adjustEasiness(ef float64, grade model.Grade) float64 {
	q := qualityFor(grade)
	ef += 0.1 - (5.0-q)*(0.08+(5.0-q)*0.02)
	if ef < MinEasiness {
		ef = MinEasiness
	}
	return ef
}

func qualityFor(grade model.Grade) float64 {
	switch grade {
	case model.GradeTooEasy:
		return 5
	case model.GradeGotIt:
		return 4
	default: // GradeConfusing
		return 1
	}
}

// nextInterval walks the fixed ladder for early repetitions, then grows
// multiplicatively by the easiness factor.
func nextInterval(repetitions, currentDays int, easiness float64) int {
	if repetitions < len(InitialIntervals) {
		return InitialIntervals[repetitions]
	}
	return int(math.Round(float64(currentDays) * easiness))
}
