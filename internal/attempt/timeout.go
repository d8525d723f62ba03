package attempt

import (
	"time"

	"github.com/algodrill/algodrill/internal/model"
)

// DefaultInteractionThreshold separates "still thinking" from "walked
// away" when an item's timer expires.
const DefaultInteractionThreshold = 10 * time.Second

// TimeoutPolicy resolves the effective grade of a timed-out attempt.
// An expiry with recent interaction is treated as honest difficulty,
// not abandonment, and graded less harshly.
type TimeoutPolicy struct {
	// InteractionThreshold is the maximum idle span before expiry that
	// still counts as active engagement.
	InteractionThreshold time.Duration
}

// Resolve returns the grade to record. Untimed attempts keep the
// learner's self-grade. On timeout, idle learners get a lapse grade and
// engaged learners get the middle grade.
func (p TimeoutPolicy) Resolve(grade model.Grade, timedOut bool, idle time.Duration) model.Grade {
	if !timedOut {
		return grade
	}
	threshold := p.InteractionThreshold
	if threshold <= 0 {
		threshold = DefaultInteractionThreshold
	}
	if idle > threshold {
		return model.GradeConfusing
	}
	return model.GradeGotIt
}
