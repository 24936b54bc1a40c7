package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
)

func newTestAcademics(t *testing.T) *Academics {
	t.Helper()
	return NewAcademics(kvstore.NewMemoryBackend(), nil, nil)
}

func TestAddHomeworkStampsAssignedDate(t *testing.T) {
	a := newTestAcademics(t)
	hw, err := a.AddHomework(context.Background(), admin, NewHomework{
		Subject: "Mathematics",
		Title:   "Algebra Chapter 5",
		DueDate: "2026-09-12",
		Teacher: "Mr. Gupta",
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if hw.ID == "" {
		t.Fatalf("expected generated id")
	}
	want := time.Now().UTC().Format("2006-01-02")
	if hw.AssignedDate != want {
		t.Fatalf("assigned date %q, want %q", hw.AssignedDate, want)
	}
}

func TestHomeworkNewestFirst(t *testing.T) {
	ctx := context.Background()
	a := newTestAcademics(t)
	if _, err := a.AddHomework(ctx, admin, NewHomework{Subject: "Science", Title: "Cell structure", DueDate: "2026-09-12"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	second, err := a.AddHomework(ctx, admin, NewHomework{Subject: "History", Title: "The Mauryan Empire", DueDate: "2026-09-14"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	got := a.Homework()
	if len(got) != 2 || got[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", got)
	}
}

func TestUpdateAndDeleteHomework(t *testing.T) {
	ctx := context.Background()
	a := newTestAcademics(t)
	hw, err := a.AddHomework(ctx, admin, NewHomework{Subject: "Science", Title: "Cell structure", DueDate: "2026-09-12"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	hw.Title = "Cell structure, revised"
	if err := a.UpdateHomework(ctx, admin, hw); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := a.Homework(); got[0].Title != "Cell structure, revised" {
		t.Fatalf("update not applied: %+v", got[0])
	}

	missing := hw
	missing.ID = "missing"
	if err := a.UpdateHomework(ctx, admin, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := a.DeleteHomework(ctx, admin, hw.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(a.Homework()) != 0 {
		t.Fatalf("homework not deleted")
	}
	if err := a.DeleteHomework(ctx, admin, hw.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestHomeworkValidation(t *testing.T) {
	a := newTestAcademics(t)
	_, err := a.AddHomework(context.Background(), admin, NewHomework{DueDate: "next week"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected subject, title and dueDate errors, got %+v", verr.Fields)
	}
}

func TestAcademicsAdminOnly(t *testing.T) {
	ctx := context.Background()
	a := newTestAcademics(t)
	sess := parent("1")

	var aerr *AuthorizationError
	if _, err := a.AddHomework(ctx, sess, NewHomework{Subject: "s", Title: "t", DueDate: "2026-09-12"}); !errors.As(err, &aerr) {
		t.Fatalf("expected authorization error on add, got %v", err)
	}
	if err := a.DeleteHomework(ctx, sess, "id"); !errors.As(err, &aerr) {
		t.Fatalf("expected authorization error on delete, got %v", err)
	}
	if err := a.SetTimetable(ctx, sess, nil); !errors.As(err, &aerr) {
		t.Fatalf("expected authorization error on timetable save, got %v", err)
	}
}

func TestSetTimetableReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	a := newTestAcademics(t)

	monday := []TimetableEntry{{
		Day: "Monday",
		Periods: []Period{
			{Time: "09:00 - 10:00", Subject: "Mathematics", Teacher: "Mr. Gupta"},
			{Time: "10:00 - 11:00", Subject: "Science", Teacher: "Mrs. Devi"},
		},
	}}
	if err := a.SetTimetable(ctx, admin, monday); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	tuesdayOnly := []TimetableEntry{{
		Day:     "Tuesday",
		Periods: []Period{{Time: "09:00 - 10:00", Subject: "English", Teacher: "Mrs. Kumar"}},
	}}
	if err := a.SetTimetable(ctx, admin, tuesdayOnly); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := a.Timetable()
	if len(got) != 1 || got[0].Day != "Tuesday" {
		t.Fatalf("save must replace the whole grid, got %+v", got)
	}
}

func TestSetTimetableRejectsMissingDay(t *testing.T) {
	a := newTestAcademics(t)
	err := a.SetTimetable(context.Background(), admin, []TimetableEntry{{Periods: []Period{}}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
