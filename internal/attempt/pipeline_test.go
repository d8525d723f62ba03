package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/algodrill/algodrill/internal/grading"
	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/spacedrep"
	"github.com/algodrill/algodrill/internal/store"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestPipeline(mem *store.Memory) *Pipeline {
	p := NewPipeline(mem, mem, mem, grading.NewRegistry(nil), TimeoutPolicy{})
	p.now = func() time.Time { return testNow }
	return p
}

func seedMCQ(mem *store.Memory, id string) {
	mem.SeedItems(model.Item{
		ID:         id,
		Pattern:    "two-pointers",
		Type:       model.TypeMultipleChoice,
		Difficulty: model.DifficultyMedium,
		Prompt:     "pick one",
		Answer:     `{"correct_index":1}`,
	})
}

func TestPipeline_SubmitRecordsAttemptAndSchedule(t *testing.T) {
	mem := store.NewMemory()
	seedMCQ(mem, "it1")
	p := newTestPipeline(mem)

	res, err := p.Submit(context.Background(), SubmitInput{
		UserID:   "u1",
		ItemID:   "it1",
		Grade:    model.GradeGotIt,
		Response: []byte(`{"selected_index":1}`),
		TimeMs:   4200,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Correct == nil || !*res.Correct {
		t.Error("correct response not marked correct")
	}
	if res.Method != grading.MethodExact {
		t.Errorf("method = %s, want exact", res.Method)
	}
	if res.NextDue == nil {
		t.Fatal("graded item should carry a next-due date")
	}
	if want := testNow.AddDate(0, 0, 1); !res.NextDue.Equal(want) {
		t.Errorf("first review due %v, want %v", res.NextDue, want)
	}

	rec, err := mem.GetProgress(context.Background(), "u1", "it1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if rec == nil || rec.Repetitions != 1 {
		t.Fatalf("progress = %+v, want one repetition", rec)
	}

	attempts, err := mem.FindAttempts(context.Background(), "u1", []string{"it1"}, testNow.Add(-time.Minute))
	if err != nil {
		t.Fatalf("FindAttempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("got %d attempt rows, want 1", len(attempts))
	}
	if attempts[0].ID != res.AttemptID || attempts[0].TimeMs != 4200 {
		t.Errorf("stored attempt %+v does not match result %+v", attempts[0], res)
	}
}

func TestPipeline_SelfGradedWithoutResponse(t *testing.T) {
	mem := store.NewMemory()
	seedMCQ(mem, "it1")
	p := newTestPipeline(mem)

	res, err := p.Submit(context.Background(), SubmitInput{
		UserID: "u1",
		ItemID: "it1",
		Grade:  model.GradeTooEasy,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Correct != nil {
		t.Error("no response payload should leave Correct nil")
	}
	if res.Method != grading.MethodNone {
		t.Errorf("method = %s, want none", res.Method)
	}
}

func TestPipeline_UnknownItem(t *testing.T) {
	p := newTestPipeline(store.NewMemory())
	_, err := p.Submit(context.Background(), SubmitInput{
		UserID: "u1",
		ItemID: "nope",
		Grade:  model.GradeGotIt,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPipeline_InvalidGrade(t *testing.T) {
	mem := store.NewMemory()
	seedMCQ(mem, "it1")
	p := newTestPipeline(mem)

	_, err := p.Submit(context.Background(), SubmitInput{UserID: "u1", ItemID: "it1", Grade: 2})
	if !errors.Is(err, spacedrep.ErrInvalidGrade) {
		t.Fatalf("err = %v, want ErrInvalidGrade", err)
	}
}

func TestPipeline_TimeoutGrading(t *testing.T) {
	tests := []struct {
		name string
		in   SubmitInput
		want model.Grade
	}{
		{
			name: "idle timeout becomes a lapse",
			in:   SubmitInput{Grade: model.GradeGotIt, TimedOut: true, Idle: time.Minute},
			want: model.GradeConfusing,
		},
		{
			name: "engaged timeout keeps the middle grade",
			in:   SubmitInput{Grade: model.GradeTooEasy, TimedOut: true, Idle: 2 * time.Second},
			want: model.GradeGotIt,
		},
		{
			name: "no timeout keeps the self-grade",
			in:   SubmitInput{Grade: model.GradeTooEasy},
			want: model.GradeTooEasy,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mem := store.NewMemory()
			seedMCQ(mem, "it1")
			p := newTestPipeline(mem)

			tc.in.UserID = "u1"
			tc.in.ItemID = "it1"
			res, err := p.Submit(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if res.Grade != tc.want {
				t.Errorf("effective grade = %d, want %d", res.Grade, tc.want)
			}

			rec, err := mem.GetProgress(context.Background(), "u1", "it1")
			if err != nil || rec == nil {
				t.Fatalf("GetProgress: %v, %v", rec, err)
			}
			if rec.LastGrade != tc.want {
				t.Errorf("stored grade = %d, want %d", rec.LastGrade, tc.want)
			}
		})
	}
}

func TestPipeline_LapseResurfacesToday(t *testing.T) {
	mem := store.NewMemory()
	seedMCQ(mem, "it1")
	p := newTestPipeline(mem)

	// Build some history first, then lapse.
	for range 3 {
		if _, err := p.Submit(context.Background(), SubmitInput{UserID: "u1", ItemID: "it1", Grade: model.GradeGotIt}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	res, err := p.Submit(context.Background(), SubmitInput{UserID: "u1", ItemID: "it1", Grade: model.GradeConfusing})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.NextDue.Equal(testNow) {
		t.Errorf("lapsed item due %v, want immediately (%v)", res.NextDue, testNow)
	}

	rec, _ := mem.GetProgress(context.Background(), "u1", "it1")
	if rec.Repetitions != 0 {
		t.Errorf("repetitions = %d, want reset to 0 after lapse", rec.Repetitions)
	}
}

func TestPipeline_InsightSkipsSchedule(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedItems(model.Item{
		ID:      "tip1",
		Pattern: "two-pointers",
		Type:    model.TypeInsight,
		Prompt:  "shrink from both ends",
	})
	p := newTestPipeline(mem)

	res, err := p.Submit(context.Background(), SubmitInput{UserID: "u1", ItemID: "tip1", Grade: model.GradeGotIt})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.NextDue != nil {
		t.Error("insight attempt should not produce a schedule")
	}
	if res.Correct != nil {
		t.Error("insight attempt should not be graded")
	}

	rec, err := mem.GetProgress(context.Background(), "u1", "tip1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if rec != nil {
		t.Errorf("insight created progress record %+v", rec)
	}

	attempts, _ := mem.FindAttempts(context.Background(), "u1", []string{"tip1"}, testNow.Add(-time.Minute))
	if len(attempts) != 1 {
		t.Fatalf("insight view not recorded: got %d attempts", len(attempts))
	}
}

func TestPipeline_ConcurrentSubmissionsKeepProgressCoherent(t *testing.T) {
	mem := store.NewMemory()
	seedMCQ(mem, "it1")
	p := newTestPipeline(mem)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, g := range []model.Grade{model.GradeTooEasy, model.GradeConfusing} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Submit(context.Background(), SubmitInput{UserID: "u1", ItemID: "it1", Grade: g})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	attempts, err := mem.FindAttempts(context.Background(), "u1", []string{"it1"}, testNow.Add(-time.Minute))
	if err != nil {
		t.Fatalf("FindAttempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempt rows, want 2", len(attempts))
	}

	// Whichever order the writes landed in, the record reflects a full
	// sequence of two advances, not a torn read-modify-write.
	rec, err := mem.GetProgress(context.Background(), "u1", "it1")
	if err != nil || rec == nil {
		t.Fatalf("GetProgress: %v, %v", rec, err)
	}
	switch rec.LastGrade {
	case model.GradeConfusing:
		if rec.Repetitions != 0 {
			t.Errorf("lapse-last ordering: repetitions = %d, want 0", rec.Repetitions)
		}
	case model.GradeTooEasy:
		if rec.Repetitions != 1 {
			t.Errorf("pass-last ordering: repetitions = %d, want 1", rec.Repetitions)
		}
	default:
		t.Errorf("unexpected final grade %d", rec.LastGrade)
	}
}
