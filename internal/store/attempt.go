package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/algodrill/algodrill/internal/model"
)

// CreateAttempt appends one immutable attempt row.
func (s *SQL) CreateAttempt(ctx context.Context, a *model.Attempt) error {
	query := s.db.Rebind(`
		INSERT INTO attempts (id, user_id, item_id, grade, feedback, time_ms, timed_out, response, correct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.ItemID, a.Grade, a.Feedback,
		a.TimeMs, a.TimedOut, a.Response, a.Correct, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create attempt %s: %w", a.ID, err)
	}
	return nil
}

// FindAttempts returns the user's attempts against the given items
// created at or after since.
func (s *SQL) FindAttempts(ctx context.Context, userID string, itemIDs []string, since time.Time) ([]model.Attempt, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT * FROM attempts
		WHERE user_id = ? AND item_id IN (?) AND created_at >= ?
		ORDER BY created_at`, userID, itemIDs, since)
	if err != nil {
		return nil, fmt.Errorf("build attempts query: %w", err)
	}

	var attempts []model.Attempt
	if err := s.db.SelectContext(ctx, &attempts, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find attempts: %w", err)
	}
	return attempts, nil
}
