package store

import (
	"context"
	"errors"
	"time"

	"github.com/algodrill/algodrill/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ItemFilter narrows content queries.
type ItemFilter struct {
	Types        []model.ItemType
	Difficulties []model.Difficulty
}

// ProgressItem pairs a due progress record with its item.
type ProgressItem struct {
	Progress model.ProgressRecord
	Item     model.Item
}

// AttemptItem pairs a recorded attempt with its item.
type AttemptItem struct {
	Attempt model.Attempt
	Item    model.Item
}

// SessionPatch carries the fields UpdateSession may change. Nil fields
// are left untouched; served ids are appended through AppendServedItems
// and never shrink.
type SessionPatch struct {
	EndedAt       *time.Time
	SizeCompleted *int
	Accuracy      *float64
	AvgResponseMs *int
}

// ContentRepo is the catalog of practice items.
type ContentRepo interface {
	// GetItem returns a single item, or ErrNotFound.
	GetItem(ctx context.Context, id string) (*model.Item, error)

	// GetItemsByPattern returns items for a pattern, excluding the given
	// ids, optionally filtered by type and difficulty.
	GetItemsByPattern(ctx context.Context, pattern string, exclude []string, f ItemFilter) ([]model.Item, error)

	// PutItems inserts or replaces catalog items by id.
	PutItems(ctx context.Context, items []model.Item) error
}

// ProgressRepo holds per-(user, item) spaced-repetition state.
type ProgressRepo interface {
	// GetProgress returns the record, or (nil, nil) if the user has
	// never attempted the item.
	GetProgress(ctx context.Context, userID, itemID string) (*model.ProgressRecord, error)

	// UpsertProgress creates or replaces the record for its (user, item) key.
	UpsertProgress(ctx context.Context, rec model.ProgressRecord) error

	// FindDueItems returns progress records whose next-due is at or
	// before now, joined with their items, excluding the given ids.
	FindDueItems(ctx context.Context, userID, pattern string, now time.Time, exclude []string) ([]ProgressItem, error)

	// FindRecentMisses returns attempts since the given time that were
	// graded confusing or timed out, joined with their items.
	FindRecentMisses(ctx context.Context, userID, pattern string, since time.Time, exclude []string) ([]AttemptItem, error)

	// FindItemsWithoutProgress returns items in the pattern the user has
	// no progress record for.
	FindItemsWithoutProgress(ctx context.Context, userID, pattern string, exclude []string) ([]model.Item, error)
}

// AttemptRepo is the append-only attempt log.
type AttemptRepo interface {
	// CreateAttempt appends one attempt row. Rows are never updated.
	CreateAttempt(ctx context.Context, a *model.Attempt) error

	// FindAttempts returns the user's attempts against the given items
	// created at or after since.
	FindAttempts(ctx context.Context, userID string, itemIDs []string, since time.Time) ([]model.Attempt, error)
}

// SessionRepo persists study sessions and their served-item sets.
type SessionRepo interface {
	CreateSession(ctx context.Context, s *model.Session) error

	// GetSession returns the session with its served ids in serve order,
	// or ErrNotFound.
	GetSession(ctx context.Context, id string) (*model.Session, error)

	UpdateSession(ctx context.Context, id string, patch SessionPatch) error

	// AppendServedItems adds item ids to the session's served set.
	// Ids already in the set are ignored.
	AppendServedItems(ctx context.Context, id string, itemIDs []string) error

	// FindRecentSessions returns the user's most recent sessions for a
	// pattern, newest first.
	FindRecentSessions(ctx context.Context, userID, pattern string, limit int) ([]model.Session, error)

	// FindRecentEndedSessions is FindRecentSessions restricted to ended
	// sessions, so in-flight sessions never occupy a window slot.
	FindRecentEndedSessions(ctx context.Context, userID, pattern string, limit int) ([]model.Session, error)
}
