package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/algodrill/algodrill/internal/model"
)

// CreateSession inserts a new session row and its initial served set.
func (s *SQL) CreateSession(ctx context.Context, sess *model.Session) error {
	query := s.db.Rebind(`
		INSERT INTO sessions (id, user_id, pattern, started_at, ended_at, size_planned, size_completed, accuracy, avg_response_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.UserID, sess.Pattern, sess.StartedAt, sess.EndedAt,
		sess.SizePlanned, sess.SizeCompleted, sess.Accuracy, sess.AvgResponseMs)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sess.ID, err)
	}
	if len(sess.ServedItemIDs) > 0 {
		return s.AppendServedItems(ctx, sess.ID, sess.ServedItemIDs)
	}
	return nil
}

// GetSession loads a session with its served ids in serve order.
func (s *SQL) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.GetContext(ctx, &sess, s.db.Rebind("SELECT * FROM sessions WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	err = s.db.SelectContext(ctx, &sess.ServedItemIDs,
		s.db.Rebind("SELECT item_id FROM session_items WHERE session_id = ? ORDER BY position"), id)
	if err != nil {
		return nil, fmt.Errorf("get session %s served items: %w", id, err)
	}
	return &sess, nil
}

// UpdateSession applies a partial update; nil patch fields are untouched.
func (s *SQL) UpdateSession(ctx context.Context, id string, patch SessionPatch) error {
	query := "UPDATE sessions SET id = id"
	var args []any
	if patch.EndedAt != nil {
		query += ", ended_at = ?"
		args = append(args, *patch.EndedAt)
	}
	if patch.SizeCompleted != nil {
		query += ", size_completed = ?"
		args = append(args, *patch.SizeCompleted)
	}
	if patch.Accuracy != nil {
		query += ", accuracy = ?"
		args = append(args, *patch.Accuracy)
	}
	if patch.AvgResponseMs != nil {
		query += ", avg_response_ms = ?"
		args = append(args, *patch.AvgResponseMs)
	}
	query += " WHERE id = ?"
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// AppendServedItems adds item ids to the session's served set. Positions
// continue from the current set size; duplicates are ignored, so the set
// only ever grows.
func (s *SQL) AppendServedItems(ctx context.Context, id string, itemIDs []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append served: %w", err)
	}
	defer tx.Rollback()

	var pos int
	err = tx.GetContext(ctx, &pos,
		s.db.Rebind("SELECT COUNT(*) FROM session_items WHERE session_id = ?"), id)
	if err != nil {
		return fmt.Errorf("count served items: %w", err)
	}

	insert := s.db.Rebind(`
		INSERT INTO session_items (session_id, item_id, position)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, item_id) DO NOTHING`)
	for _, itemID := range itemIDs {
		if _, err := tx.ExecContext(ctx, insert, id, itemID, pos); err != nil {
			return fmt.Errorf("append served item %s: %w", itemID, err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append served: %w", err)
	}
	return nil
}

// FindRecentSessions returns the user's most recent sessions for a
// pattern, newest first. Served ids are not loaded; callers that need
// them use GetSession.
func (s *SQL) FindRecentSessions(ctx context.Context, userID, pattern string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.SelectContext(ctx, &sessions, s.db.Rebind(`
		SELECT * FROM sessions
		WHERE user_id = ? AND pattern = ?
		ORDER BY started_at DESC
		LIMIT ?`), userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("find recent sessions: %w", err)
	}
	return sessions, nil
}

// FindRecentEndedSessions returns the user's most recent ended sessions
// for a pattern, newest first.
func (s *SQL) FindRecentEndedSessions(ctx context.Context, userID, pattern string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.SelectContext(ctx, &sessions, s.db.Rebind(`
		SELECT * FROM sessions
		WHERE user_id = ? AND pattern = ? AND ended_at IS NOT NULL
		ORDER BY started_at DESC
		LIMIT ?`), userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("find recent ended sessions: %w", err)
	}
	return sessions, nil
}
