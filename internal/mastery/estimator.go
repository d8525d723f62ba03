// Package mastery derives a difficulty-weight profile from a learner's
// recent session accuracy. The session builder uses the profile to bias
// weighted sampling toward harder material once a pattern is sinking in.
package mastery

import (
	"context"

	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/store"
)

// SessionWindow is how many recent ended sessions feed the rolling accuracy.
const SessionWindow = 3

// MasteryThreshold is the rolling accuracy at which sampling shifts to
// the mastery profile.
const MasteryThreshold = 0.75

// Profile maps each difficulty band to a sampling weight.
type Profile map[model.Difficulty]float64

// DefaultProfile biases toward Easy/Medium for learners still ramping up.
var DefaultProfile = Profile{
	model.DifficultyEasy:   0.50,
	model.DifficultyMedium: 0.35,
	model.DifficultyHard:   0.15,
}

// MasteryProfile biases toward Medium/Hard once rolling accuracy clears
// the threshold.
var MasteryProfile = Profile{
	model.DifficultyEasy:   0.15,
	model.DifficultyMedium: 0.45,
	model.DifficultyHard:   0.40,
}

// Weight returns the sampling weight for a difficulty, defaulting to the
// lowest band for anything unrecognized.
func (p Profile) Weight(d model.Difficulty) float64 {
	if w, ok := p[d]; ok {
		return w
	}
	return p[model.DifficultyEasy]
}

// Estimator computes rolling accuracy from the session store.
type Estimator struct {
	sessions store.SessionRepo
}

// NewEstimator creates an Estimator backed by the given session repo.
func NewEstimator(sessions store.SessionRepo) *Estimator {
	return &Estimator{sessions: sessions}
}

// RollingAccuracy averages the accuracy of the learner's last few ended
// sessions for a pattern. Open sessions never occupy a window slot, so
// an in-flight session does not shrink the average. A learner with no
// ended sessions scores 0.
func (e *Estimator) RollingAccuracy(ctx context.Context, userID, pattern string) (float64, error) {
	recent, err := e.sessions.FindRecentEndedSessions(ctx, userID, pattern, SessionWindow)
	if err != nil {
		return 0, err
	}
	if len(recent) == 0 {
		return 0, nil
	}

	var sum float64
	for _, s := range recent {
		sum += s.Accuracy
	}
	return sum / float64(len(recent)), nil
}

// ProfileFor selects the sampling profile for the learner's current
// rolling accuracy on a pattern.
func (e *Estimator) ProfileFor(ctx context.Context, userID, pattern string) (Profile, error) {
	acc, err := e.RollingAccuracy(ctx, userID, pattern)
	if err != nil {
		return nil, err
	}
	return SelectProfile(acc), nil
}

// SelectProfile maps a rolling accuracy to a profile.
func SelectProfile(accuracy float64) Profile {
	if accuracy >= MasteryThreshold {
		return MasteryProfile
	}
	return DefaultProfile
}
