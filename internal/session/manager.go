package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/store"
)

// ErrNotOwner is returned when a caller operates on a session that
// belongs to a different user.
var ErrNotOwner = fmt.Errorf("session belongs to a different user")

// Manager owns one session's identity and its served-item set across
// start / add-more / end. The mutex serializes add-more calls so the
// exclude set a build sees is never stale relative to a concurrent append.
type Manager struct {
	builder  *Builder
	sessions store.SessionRepo
	attempts store.AttemptRepo
	cfg      Config
	now      func() time.Time

	mu   sync.Mutex
	sess *model.Session
}

// Summary is the finalized view of an ended session.
type Summary struct {
	SessionID     string
	Pattern       string
	SizePlanned   int
	SizeCompleted int
	TotalAttempts int
	Accuracy      float64
	AvgResponseMs int
	Duration      time.Duration
}

// NewManager creates a Manager with no active session; call Start or
// Resume before anything else.
func NewManager(builder *Builder, sessions store.SessionRepo, attempts store.AttemptRepo, cfg Config) *Manager {
	return &Manager{
		builder:  builder,
		sessions: sessions,
		attempts: attempts,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Start creates a session, builds the opening batch, and records the
// served ids. Returns the new session id with the batch.
func (m *Manager) Start(ctx context.Context, userID, pattern string, size int) (string, []model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.builder.Build(ctx, userID, pattern, size, nil)
	if err != nil {
		return "", nil, fmt.Errorf("start session: %w", err)
	}

	sess := &model.Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		Pattern:       pattern,
		StartedAt:     m.now(),
		SizePlanned:   size,
		ServedItemIDs: itemIDs(items),
	}
	if err := m.sessions.CreateSession(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("start session: %w", err)
	}

	m.sess = sess
	return sess.ID, items, nil
}

// Resume rehydrates a Manager onto an existing session. This is the
// explicit constructor for picking a session back up between requests;
// ownership is checked against userID.
func Resume(ctx context.Context, builder *Builder, sessions store.SessionRepo, attempts store.AttemptRepo, cfg Config, sessionID, userID string) (*Manager, error) {
	sess, err := sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("resume session %s: %w", sessionID, ErrNotOwner)
	}

	m := NewManager(builder, sessions, attempts, cfg)
	m.sess = sess
	return m, nil
}

// AddMore builds another batch, excluding everything served so far, and
// appends the new ids to the served set. The served set only grows; an
// id is never served twice within a session.
func (m *Manager) AddMore(ctx context.Context, step int) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.active()
	if err != nil {
		return nil, err
	}
	if sess.Ended() {
		return nil, fmt.Errorf("add more: session %s already ended", sess.ID)
	}

	exclude := append([]string(nil), sess.ServedItemIDs...)
	items, err := m.builder.Build(ctx, sess.UserID, sess.Pattern, step, exclude)
	if err != nil {
		return nil, fmt.Errorf("add more: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := itemIDs(items)
	if err := m.sessions.AppendServedItems(ctx, sess.ID, ids); err != nil {
		return nil, fmt.Errorf("add more: %w", err)
	}
	sess.ServedItemIDs = append(sess.ServedItemIDs, ids...)
	return items, nil
}

// End finalizes the session: accuracy is the share of recent attempts
// graded 3 or below, response time is the mean attempt latency. Ending
// an already-ended session is idempotent and returns the stored result.
func (m *Manager) End(ctx context.Context) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.active()
	if err != nil {
		return nil, err
	}
	if sess.Ended() {
		// Re-count attempts against the original end window so a repeat
		// call reports the same totals as the first.
		attempts, err := m.attempts.FindAttempts(ctx, sess.UserID, sess.ServedItemIDs, sess.EndedAt.Add(-m.cfg.EndWindow))
		if err != nil {
			return nil, fmt.Errorf("end session: %w", err)
		}
		return m.summary(sess, len(attempts)), nil
	}

	now := m.now()
	attempts, err := m.attempts.FindAttempts(ctx, sess.UserID, sess.ServedItemIDs, now.Add(-m.cfg.EndWindow))
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	var accuracy float64
	var avgMs int
	if len(attempts) > 0 {
		passed := 0
		totalMs := 0
		for _, a := range attempts {
			if a.Grade <= model.GradeGotIt {
				passed++
			}
			totalMs += a.TimeMs
		}
		accuracy = float64(passed) / float64(len(attempts))
		avgMs = totalMs / len(attempts)
	}

	completed := len(sess.ServedItemIDs)
	patch := store.SessionPatch{
		EndedAt:       &now,
		SizeCompleted: &completed,
		Accuracy:      &accuracy,
		AvgResponseMs: &avgMs,
	}
	if err := m.sessions.UpdateSession(ctx, sess.ID, patch); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	sess.EndedAt = &now
	sess.SizeCompleted = completed
	sess.Accuracy = accuracy
	sess.AvgResponseMs = avgMs
	return m.summary(sess, len(attempts)), nil
}

// Session returns a copy of the current session state.
func (m *Manager) Session() (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.active()
	if err != nil {
		return model.Session{}, err
	}
	cp := *sess
	cp.ServedItemIDs = append([]string(nil), sess.ServedItemIDs...)
	return cp, nil
}

func (m *Manager) active() (*model.Session, error) {
	if m.sess == nil {
		return nil, fmt.Errorf("no active session: %w", store.ErrNotFound)
	}
	return m.sess, nil
}

func (m *Manager) summary(sess *model.Session, attempts int) *Summary {
	s := &Summary{
		SessionID:     sess.ID,
		Pattern:       sess.Pattern,
		SizePlanned:   sess.SizePlanned,
		SizeCompleted: sess.SizeCompleted,
		TotalAttempts: attempts,
		Accuracy:      sess.Accuracy,
		AvgResponseMs: sess.AvgResponseMs,
	}
	if sess.EndedAt != nil {
		s.Duration = sess.EndedAt.Sub(sess.StartedAt)
	}
	return s
}

func itemIDs(items []model.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
