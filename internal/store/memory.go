package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/algodrill/algodrill/internal/model"
)

// Memory is a mutex-guarded in-memory store implementing all four repo
// contracts. It backs package tests and the CLI's demo mode.
type Memory struct {
	mu       sync.RWMutex
	items    map[string]model.Item
	progress map[string]model.ProgressRecord // key: userID + "/" + itemID
	attempts []model.Attempt
	sessions map[string]*model.Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:    make(map[string]model.Item),
		progress: make(map[string]model.ProgressRecord),
		sessions: make(map[string]*model.Session),
	}
}

// SeedItems loads items into the catalog, replacing any with the same id.
func (m *Memory) SeedItems(items ...model.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.items[it.ID] = it
	}
}

// PutItems implements ContentRepo.
func (m *Memory) PutItems(_ context.Context, items []model.Item) error {
	m.SeedItems(items...)
	return nil
}

func progressKey(userID, itemID string) string { return userID + "/" + itemID }

func inSet(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

// GetItem implements ContentRepo.
func (m *Memory) GetItem(_ context.Context, id string) (*model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &it, nil
}

// GetItemsByPattern implements ContentRepo.
func (m *Memory) GetItemsByPattern(_ context.Context, pattern string, exclude []string, f ItemFilter) ([]model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Item
	for _, it := range m.items {
		if it.Pattern != pattern || inSet(exclude, it.ID) {
			continue
		}
		if len(f.Types) > 0 && !containsType(f.Types, it.Type) {
			continue
		}
		if len(f.Difficulties) > 0 && !containsDifficulty(f.Difficulties, it.Difficulty) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsType(ts []model.ItemType, t model.ItemType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

func containsDifficulty(ds []model.Difficulty, d model.Difficulty) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

// GetProgress implements ProgressRepo.
func (m *Memory) GetProgress(_ context.Context, userID, itemID string) (*model.ProgressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.progress[progressKey(userID, itemID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// UpsertProgress implements ProgressRepo.
func (m *Memory) UpsertProgress(_ context.Context, rec model.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[progressKey(rec.UserID, rec.ItemID)] = rec
	return nil
}

// FindDueItems implements ProgressRepo.
func (m *Memory) FindDueItems(_ context.Context, userID, pattern string, now time.Time, exclude []string) ([]ProgressItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ProgressItem
	for _, rec := range m.progress {
		if rec.UserID != userID || rec.NextDue.After(now) || inSet(exclude, rec.ItemID) {
			continue
		}
		it, ok := m.items[rec.ItemID]
		if !ok || it.Pattern != pattern {
			continue
		}
		out = append(out, ProgressItem{Progress: rec, Item: it})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Progress.NextDue.Before(out[j].Progress.NextDue)
	})
	return out, nil
}

// FindRecentMisses implements ProgressRepo.
func (m *Memory) FindRecentMisses(_ context.Context, userID, pattern string, since time.Time, exclude []string) ([]AttemptItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []AttemptItem
	for _, a := range m.attempts {
		if a.UserID != userID || a.CreatedAt.Before(since) || inSet(exclude, a.ItemID) {
			continue
		}
		if a.Grade != model.GradeConfusing && !a.TimedOut {
			continue
		}
		it, ok := m.items[a.ItemID]
		if !ok || it.Pattern != pattern {
			continue
		}
		out = append(out, AttemptItem{Attempt: a, Item: it})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Attempt.CreatedAt.After(out[j].Attempt.CreatedAt)
	})
	return out, nil
}

// FindItemsWithoutProgress implements ProgressRepo.
func (m *Memory) FindItemsWithoutProgress(_ context.Context, userID, pattern string, exclude []string) ([]model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Item
	for _, it := range m.items {
		if it.Pattern != pattern || inSet(exclude, it.ID) {
			continue
		}
		if _, attempted := m.progress[progressKey(userID, it.ID)]; attempted {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateAttempt implements AttemptRepo.
func (m *Memory) CreateAttempt(_ context.Context, a *model.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

// FindAttempts implements AttemptRepo.
func (m *Memory) FindAttempts(_ context.Context, userID string, itemIDs []string, since time.Time) ([]model.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Attempt
	for _, a := range m.attempts {
		if a.UserID != userID || a.CreatedAt.Before(since) || !inSet(itemIDs, a.ItemID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// CreateSession implements SessionRepo.
func (m *Memory) CreateSession(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.ServedItemIDs = append([]string(nil), s.ServedItemIDs...)
	m.sessions[s.ID] = &cp
	return nil
}

// GetSession implements SessionRepo.
func (m *Memory) GetSession(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	cp := *s
	cp.ServedItemIDs = append([]string(nil), s.ServedItemIDs...)
	return &cp, nil
}

// UpdateSession implements SessionRepo.
func (m *Memory) UpdateSession(_ context.Context, id string, patch SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if patch.EndedAt != nil {
		s.EndedAt = patch.EndedAt
	}
	if patch.SizeCompleted != nil {
		s.SizeCompleted = *patch.SizeCompleted
	}
	if patch.Accuracy != nil {
		s.Accuracy = *patch.Accuracy
	}
	if patch.AvgResponseMs != nil {
		s.AvgResponseMs = *patch.AvgResponseMs
	}
	return nil
}

// AppendServedItems implements SessionRepo.
func (m *Memory) AppendServedItems(_ context.Context, id string, itemIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	for _, itemID := range itemIDs {
		if !inSet(s.ServedItemIDs, itemID) {
			s.ServedItemIDs = append(s.ServedItemIDs, itemID)
		}
	}
	return nil
}

// FindRecentSessions implements SessionRepo.
func (m *Memory) FindRecentSessions(_ context.Context, userID, pattern string, limit int) ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Session
	for _, s := range m.sessions {
		if s.UserID != userID || s.Pattern != pattern {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindRecentEndedSessions implements SessionRepo.
func (m *Memory) FindRecentEndedSessions(_ context.Context, userID, pattern string, limit int) ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Session
	for _, s := range m.sessions {
		if s.UserID != userID || s.Pattern != pattern || !s.Ended() {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
