package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/algodrill/algodrill/internal/model"
)

// GetItem returns a single item by id.
func (s *SQL) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := s.db.GetContext(ctx, &item, s.db.Rebind("SELECT * FROM items WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return &item, nil
}

// GetItemsByPattern returns items for a pattern, minus excluded ids,
// optionally filtered by type and difficulty.
func (s *SQL) GetItemsByPattern(ctx context.Context, pattern string, exclude []string, f ItemFilter) ([]model.Item, error) {
	query := "SELECT * FROM items WHERE pattern = ?"
	args := []any{pattern}

	if len(exclude) > 0 {
		query += " AND id NOT IN (?)"
		args = append(args, exclude)
	}
	if len(f.Types) > 0 {
		query += " AND type IN (?)"
		args = append(args, f.Types)
	}
	if len(f.Difficulties) > 0 {
		query += " AND difficulty IN (?)"
		args = append(args, f.Difficulties)
	}
	query += " ORDER BY id"

	expanded, expArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var items []model.Item
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(expanded), expArgs...); err != nil {
		return nil, fmt.Errorf("items by pattern %s: %w", pattern, err)
	}
	return items, nil
}

// PutItems inserts or replaces catalog items in one transaction.
func (s *SQL) PutItems(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put items: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO items (id, pattern, type, difficulty, prompt, answer, subtype, tags, duration_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			pattern = excluded.pattern,
			type = excluded.type,
			difficulty = excluded.difficulty,
			prompt = excluded.prompt,
			answer = excluded.answer,
			subtype = excluded.subtype,
			tags = excluded.tags,
			duration_sec = excluded.duration_sec`)
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, query,
			it.ID, it.Pattern, it.Type, it.Difficulty, it.Prompt, it.Answer, it.Subtype, it.Tags, it.DurationSec); err != nil {
			return fmt.Errorf("put item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// itemsByID loads a set of items and returns them keyed by id.
func (s *SQL) itemsByID(ctx context.Context, ids []string) (map[string]model.Item, error) {
	if len(ids) == 0 {
		return map[string]model.Item{}, nil
	}
	query, args, err := sqlx.In("SELECT * FROM items WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build items-by-id query: %w", err)
	}
	var items []model.Item
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("items by id: %w", err)
	}
	out := make(map[string]model.Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}
