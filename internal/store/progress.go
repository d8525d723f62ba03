package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/algodrill/algodrill/internal/model"
)

// GetProgress returns the progress record for (user, item), or (nil, nil)
// if the user has never attempted the item.
func (s *SQL) GetProgress(ctx context.Context, userID, itemID string) (*model.ProgressRecord, error) {
	var rec model.ProgressRecord
	err := s.db.GetContext(ctx, &rec,
		s.db.Rebind("SELECT * FROM progress WHERE user_id = ? AND item_id = ?"),
		userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress %s/%s: %w", userID, itemID, err)
	}
	return &rec, nil
}

// UpsertProgress writes the record for its (user, item) key, creating the
// row on first attempt. Runs in a transaction so concurrent writers for
// the same key serialize at the database.
func (s *SQL) UpsertProgress(ctx context.Context, rec model.ProgressRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert progress: %w", err)
	}
	defer tx.Rollback()

	query := s.db.Rebind(`
		INSERT INTO progress (user_id, item_id, easiness, repetitions, interval_days, next_due, last_grade)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			easiness      = excluded.easiness,
			repetitions   = excluded.repetitions,
			interval_days = excluded.interval_days,
			next_due      = excluded.next_due,
			last_grade    = excluded.last_grade`)

	if _, err := tx.ExecContext(ctx, query,
		rec.UserID, rec.ItemID, rec.Easiness, rec.Repetitions,
		rec.IntervalDays, rec.NextDue, rec.LastGrade); err != nil {
		return fmt.Errorf("upsert progress %s/%s: %w", rec.UserID, rec.ItemID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert progress: %w", err)
	}
	return nil
}

// FindDueItems returns due progress records joined with their items.
func (s *SQL) FindDueItems(ctx context.Context, userID, pattern string, now time.Time, exclude []string) ([]ProgressItem, error) {
	query := `
		SELECT p.* FROM progress p
		JOIN items i ON i.id = p.item_id
		WHERE p.user_id = ? AND i.pattern = ? AND p.next_due <= ?`
	args := []any{userID, pattern, now}
	if len(exclude) > 0 {
		query += " AND p.item_id NOT IN (?)"
		args = append(args, exclude)
	}
	query += " ORDER BY p.next_due"

	expanded, expArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("build due query: %w", err)
	}

	var recs []model.ProgressRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(expanded), expArgs...); err != nil {
		return nil, fmt.Errorf("find due items: %w", err)
	}

	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ItemID
	}
	items, err := s.itemsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ProgressItem, 0, len(recs))
	for _, r := range recs {
		item, ok := items[r.ItemID]
		if !ok {
			continue
		}
		out = append(out, ProgressItem{Progress: r, Item: item})
	}
	return out, nil
}

// FindRecentMisses returns attempts since the cutoff that were graded
// confusing or timed out, joined with their items, newest first.
func (s *SQL) FindRecentMisses(ctx context.Context, userID, pattern string, since time.Time, exclude []string) ([]AttemptItem, error) {
	query := `
		SELECT a.* FROM attempts a
		JOIN items i ON i.id = a.item_id
		WHERE a.user_id = ? AND i.pattern = ? AND a.created_at >= ?
		  AND (a.grade = ? OR a.timed_out)`
	args := []any{userID, pattern, since, model.GradeConfusing}
	if len(exclude) > 0 {
		query += " AND a.item_id NOT IN (?)"
		args = append(args, exclude)
	}
	query += " ORDER BY a.created_at DESC"

	expanded, expArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("build misses query: %w", err)
	}

	var attempts []model.Attempt
	if err := s.db.SelectContext(ctx, &attempts, s.db.Rebind(expanded), expArgs...); err != nil {
		return nil, fmt.Errorf("find recent misses: %w", err)
	}

	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ItemID
	}
	items, err := s.itemsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]AttemptItem, 0, len(attempts))
	for _, a := range attempts {
		item, ok := items[a.ItemID]
		if !ok {
			continue
		}
		out = append(out, AttemptItem{Attempt: a, Item: item})
	}
	return out, nil
}

// FindItemsWithoutProgress returns items in the pattern the user has no
// progress record for.
func (s *SQL) FindItemsWithoutProgress(ctx context.Context, userID, pattern string, exclude []string) ([]model.Item, error) {
	query := `
		SELECT i.* FROM items i
		WHERE i.pattern = ?
		  AND i.id NOT IN (SELECT item_id FROM progress WHERE user_id = ?)`
	args := []any{pattern, userID}
	if len(exclude) > 0 {
		query += " AND i.id NOT IN (?)"
		args = append(args, exclude)
	}
	query += " ORDER BY i.id"

	expanded, expArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("build new-items query: %w", err)
	}

	var items []model.Item
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(expanded), expArgs...); err != nil {
		return nil, fmt.Errorf("find items without progress: %w", err)
	}
	return items, nil
}
