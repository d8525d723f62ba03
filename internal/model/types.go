package model

import (
	"fmt"
	"time"
)

// ItemType identifies how an item is presented and graded.
type ItemType string

const (
	TypeMultipleChoice ItemType = "mcq"
	TypeFillInBlank    ItemType = "fitb"
	TypeOrdering       ItemType = "ordering"
	TypePlan           ItemType = "plan"
	TypeInsight        ItemType = "insight"
)

// Difficulty is the authored difficulty band of an item.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Grade is the learner's post-answer self-report. It drives both the
// feedback UI and the spaced-repetition schedule.
type Grade int

const (
	// GradeTooEasy means the item was trivial; the interval grows aggressively.
	GradeTooEasy Grade = 1
	// GradeGotIt means the item landed about right; normal interval growth.
	GradeGotIt Grade = 3
	// GradeConfusing is a lapse; the item resurfaces the same day.
	GradeConfusing Grade = 5
)

// Valid reports whether g is one of the three allowed grades.
func (g Grade) Valid() bool {
	return g == GradeTooEasy || g == GradeGotIt || g == GradeConfusing
}

// Item is a single immutable practice unit. The engine only reads items;
// authoring lives with the content collaborator.
type Item struct {
	ID          string     `db:"id" json:"id"`
	Pattern     string     `db:"pattern" json:"pattern"`
	Type        ItemType   `db:"type" json:"type"`
	Difficulty  Difficulty `db:"difficulty" json:"difficulty"`
	Prompt      string     `db:"prompt" json:"prompt"`
	Answer      string     `db:"answer" json:"answer,omitempty"`
	Subtype     string     `db:"subtype" json:"subtype,omitempty"`
	Tags        string     `db:"tags" json:"tags,omitempty"`
	DurationSec int        `db:"duration_sec" json:"duration_sec,omitempty"`
}

// ProgressRecord is the per-(user, item) spaced-repetition state.
// It is created lazily on first attempt and mutated only by the scheduler.
type ProgressRecord struct {
	UserID       string    `db:"user_id"`
	ItemID       string    `db:"item_id"`
	Easiness     float64   `db:"easiness"`
	Repetitions  int       `db:"repetitions"`
	IntervalDays int       `db:"interval_days"`
	NextDue      time.Time `db:"next_due"`
	LastGrade    Grade     `db:"last_grade"`
}

// Attempt is one submission against one item. Rows are append-only and
// never mutated after creation.
type Attempt struct {
	ID       string    `db:"id"`
	UserID   string    `db:"user_id"`
	ItemID   string    `db:"item_id"`
	Grade    Grade     `db:"grade"`
	Feedback string    `db:"feedback"`
	TimeMs   int       `db:"time_ms"`
	TimedOut bool      `db:"timed_out"`
	Response string    `db:"response"`
	// Correct is nil for insight items, which are never graded.
	Correct   *bool     `db:"correct"`
	CreatedAt time.Time `db:"created_at"`
}

// Session is an append-only accumulator for one study sitting.
// ServedItemIDs only ever grows, and ending is a one-way transition.
type Session struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	Pattern       string     `db:"pattern"`
	StartedAt     time.Time  `db:"started_at"`
	EndedAt       *time.Time `db:"ended_at"`
	SizePlanned   int        `db:"size_planned"`
	SizeCompleted int        `db:"size_completed"`
	ServedItemIDs []string   `db:"-"`
	Accuracy      float64    `db:"accuracy"`
	AvgResponseMs int        `db:"avg_response_ms"`
}

// Ended reports whether the session has been finalized.
func (s *Session) Ended() bool {
	return s.EndedAt != nil
}

// Served reports whether the item id has already been served in this session.
func (s *Session) Served(itemID string) bool {
	for _, id := range s.ServedItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (t ItemType) String() string { return string(t) }

// ParseItemType converts a stored type tag back into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case TypeMultipleChoice, TypeFillInBlank, TypeOrdering, TypePlan, TypeInsight:
		return ItemType(s), nil
	}
	return "", fmt.Errorf("unknown item type: %q", s)
}
