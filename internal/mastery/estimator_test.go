package mastery

import (
	"context"
	"testing"
	"time"

	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/store"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func endedSession(id string, startedAt time.Time, accuracy float64) *model.Session {
	ended := startedAt.Add(20 * time.Minute)
	return &model.Session{
		ID: id, UserID: "u1", Pattern: "two-pointers",
		StartedAt: startedAt, EndedAt: &ended, Accuracy: accuracy,
	}
}

func TestRollingAccuracy_NoHistory(t *testing.T) {
	est := NewEstimator(store.NewMemory())
	acc, err := est.RollingAccuracy(context.Background(), "u1", "two-pointers")
	if err != nil {
		t.Fatalf("RollingAccuracy: %v", err)
	}
	if acc != 0 {
		t.Errorf("accuracy = %f, want 0", acc)
	}
}

func TestRollingAccuracy_AveragesLastThreeEnded(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// Four ended sessions; only the three most recent count.
	for i, acc := range []float64{0.1, 0.6, 0.8, 1.0} {
		s := endedSession(string(rune('a'+i)), testNow.Add(time.Duration(i)*time.Hour), acc)
		if err := mem.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}
	// An unfinished session is ignored entirely.
	if err := mem.CreateSession(ctx, &model.Session{
		ID: "open", UserID: "u1", Pattern: "two-pointers", StartedAt: testNow.Add(5 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	est := NewEstimator(mem)
	acc, err := est.RollingAccuracy(ctx, "u1", "two-pointers")
	if err != nil {
		t.Fatalf("RollingAccuracy: %v", err)
	}
	// The three most recent ended sessions: 0.6, 0.8 and 1.0.
	want := (0.6 + 0.8 + 1.0) / 3
	if acc != want {
		t.Errorf("accuracy = %f, want %f", acc, want)
	}
}

func TestRollingAccuracy_OpenSessionKeepsWindowFull(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// Three ended sessions, oldest first: 0.4 would be evicted if the
	// open session below took a window slot.
	for i, acc := range []float64{0.4, 1.0, 1.0} {
		s := endedSession(string(rune('a'+i)), testNow.Add(time.Duration(i)*time.Hour), acc)
		if err := mem.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}
	// An in-flight session is always the newest during mid-session
	// builds; it must not displace an ended session.
	if err := mem.CreateSession(ctx, &model.Session{
		ID: "open", UserID: "u1", Pattern: "two-pointers", StartedAt: testNow.Add(5 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	est := NewEstimator(mem)
	acc, err := est.RollingAccuracy(ctx, "u1", "two-pointers")
	if err != nil {
		t.Fatalf("RollingAccuracy: %v", err)
	}
	want := (0.4 + 1.0 + 1.0) / 3
	if acc != want {
		t.Errorf("accuracy = %f, want %f", acc, want)
	}
	if got := SelectProfile(acc); got.Weight(model.DifficultyHard) != MasteryProfile.Weight(model.DifficultyHard) {
		t.Errorf("profile at %f = %+v, want mastery profile", acc, got)
	}
}

func TestSelectProfile(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     Profile
	}{
		{0, DefaultProfile},
		{0.74, DefaultProfile},
		{0.75, MasteryProfile},
		{1.0, MasteryProfile},
	}
	for _, tt := range tests {
		got := SelectProfile(tt.accuracy)
		if got.Weight(model.DifficultyHard) != tt.want.Weight(model.DifficultyHard) {
			t.Errorf("SelectProfile(%f) hard weight = %f", tt.accuracy, got.Weight(model.DifficultyHard))
		}
	}
}

func TestProfile_WeightFallback(t *testing.T) {
	if w := DefaultProfile.Weight("unknown"); w != DefaultProfile[model.DifficultyEasy] {
		t.Errorf("fallback weight = %f", w)
	}
}
