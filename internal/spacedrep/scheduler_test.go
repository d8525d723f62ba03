package spacedrep

import (
	"errors"
	"testing"
	"time"

	"github.com/algodrill/algodrill/internal/model"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestAdvance_NilRecordInitializesDefaults(t *testing.T) {
	rec, err := Advance(nil, "u1", "i1", model.GradeGotIt, testNow)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if rec.UserID != "u1" || rec.ItemID != "i1" {
		t.Errorf("keys = %s/%s, want u1/i1", rec.UserID, rec.ItemID)
	}
	if rec.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", rec.Repetitions)
	}
	if rec.IntervalDays != InitialIntervals[0] {
		t.Errorf("IntervalDays = %d, want %d", rec.IntervalDays, InitialIntervals[0])
	}
	if !rec.NextDue.Equal(testNow.AddDate(0, 0, InitialIntervals[0])) {
		t.Errorf("NextDue = %v", rec.NextDue)
	}
}

func TestAdvance_InvalidGrade(t *testing.T) {
	for _, g := range []model.Grade{0, 2, 4, 6, -1} {
		_, err := Advance(nil, "u1", "i1", g, testNow)
		if !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("grade %d: err = %v, want ErrInvalidGrade", g, err)
		}
	}
}

func TestAdvance_IntervalMonotonicUnderSuccess(t *testing.T) {
	for _, grade := range []model.Grade{model.GradeTooEasy, model.GradeGotIt} {
		var rec *model.ProgressRecord
		prev := 0
		for i := 0; i < 12; i++ {
			next, err := Advance(rec, "u1", "i1", grade, testNow)
			if err != nil {
				t.Fatalf("Advance: %v", err)
			}
			if next.IntervalDays < prev {
				t.Fatalf("grade %d rep %d: interval shrank %d -> %d", grade, i, prev, next.IntervalDays)
			}
			prev = next.IntervalDays
			rec = &next
		}
		if prev > MaxIntervalDays {
			t.Errorf("grade %d: interval %d exceeds cap", grade, prev)
		}
	}
}

func TestAdvance_LapseResetsAndResurfacesToday(t *testing.T) {
	rec, _ := Advance(nil, "u1", "i1", model.GradeGotIt, testNow)
	rec, _ = Advance(&rec, "u1", "i1", model.GradeGotIt, testNow)
	if rec.Repetitions != 2 {
		t.Fatalf("setup: Repetitions = %d", rec.Repetitions)
	}

	lapsed, err := Advance(&rec, "u1", "i1", model.GradeConfusing, testNow)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if lapsed.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", lapsed.Repetitions)
	}
	if lapsed.IntervalDays != 0 {
		t.Errorf("IntervalDays = %d, want 0", lapsed.IntervalDays)
	}
	if !lapsed.NextDue.Equal(testNow) {
		t.Errorf("NextDue = %v, want %v", lapsed.NextDue, testNow)
	}
	if lapsed.LastGrade != model.GradeConfusing {
		t.Errorf("LastGrade = %d, want 5", lapsed.LastGrade)
	}
}

func TestAdvance_EasinessFloor(t *testing.T) {
	var rec *model.ProgressRecord
	for i := 0; i < 10; i++ {
		next, err := Advance(rec, "u1", "i1", model.GradeConfusing, testNow)
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if next.Easiness < MinEasiness {
			t.Fatalf("rep %d: Easiness = %f below floor", i, next.Easiness)
		}
		rec = &next
	}
	if rec.Easiness != MinEasiness {
		t.Errorf("Easiness = %f, want clamped at %f", rec.Easiness, MinEasiness)
	}
}

func TestAdvance_TooEasyGrowsFasterThanGotIt(t *testing.T) {
	run := func(grade model.Grade) int {
		var rec *model.ProgressRecord
		for i := 0; i < 8; i++ {
			next, _ := Advance(rec, "u1", "i1", grade, testNow)
			rec = &next
		}
		return rec.IntervalDays
	}
	easy, normal := run(model.GradeTooEasy), run(model.GradeGotIt)
	if easy <= normal {
		t.Errorf("too-easy interval %d not greater than got-it interval %d", easy, normal)
	}
}

func TestAdvance_PureFunction(t *testing.T) {
	in := model.ProgressRecord{
		UserID: "u1", ItemID: "i1",
		Easiness: 2.1, Repetitions: 4, IntervalDays: 9,
		NextDue: testNow,
	}
	before := in
	a, _ := Advance(&in, "u1", "i1", model.GradeGotIt, testNow)
	b, _ := Advance(&in, "u1", "i1", model.GradeGotIt, testNow)
	if in != before {
		t.Error("Advance mutated its input")
	}
	if a != b {
		t.Errorf("Advance not deterministic: %+v vs %+v", a, b)
	}
}
