package portal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// NewHomework carries the admin-entered assignment for AddHomework. The
// id and assigned date are set by the service.
type NewHomework struct {
	Subject     string `json:"subject"`
	Title       string `json:"title"`
	DueDate     string `json:"dueDate"`
	Description string `json:"description"`
	Teacher     string `json:"teacher"`
}

// Academics manages the homework board and the class timetable. The two
// are independently persisted values, same as the gallery's kinds.
type Academics struct {
	homework  *kvstore.Store[[]Homework]
	timetable *kvstore.Store[[]TimetableEntry]
	queue     queue.Queue
}

// NewAcademics creates the service over the shared backend and bus.
func NewAcademics(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Academics {
	return &Academics{
		homework:  kvstore.New(KeyHomework, []Homework{}, backend, bus),
		timetable: kvstore.New(KeyTimetable, []TimetableEntry{}, backend, bus),
		queue:     q,
	}
}

// Homework returns all assignments, newest first.
func (a *Academics) Homework() []Homework { return a.homework.Get() }

// Timetable returns the weekly period grid.
func (a *Academics) Timetable() []TimetableEntry { return a.timetable.Get() }

func validateHomework(subject, title, dueDate string) error {
	var fields []FieldError
	if subject == "" {
		fields = append(fields, FieldError{Field: "subject", Reason: "required"})
	}
	if title == "" {
		fields = append(fields, FieldError{Field: "title", Reason: "required"})
	}
	if _, err := time.Parse(dateLayout, dueDate); err != nil {
		fields = append(fields, FieldError{Field: "dueDate", Reason: "must be YYYY-MM-DD"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// AddHomework prepends an assignment with a fresh id, stamped with
// today's assigned date. Admin only.
func (a *Academics) AddHomework(ctx context.Context, sess Session, data NewHomework) (Homework, error) {
	if !sess.IsAdmin() {
		return Homework{}, &AuthorizationError{Verb: "add homework", Role: sess.Role}
	}
	if err := validateHomework(data.Subject, data.Title, data.DueDate); err != nil {
		return Homework{}, err
	}
	hw := Homework{
		ID:           uuid.NewString(),
		Subject:      data.Subject,
		Title:        data.Title,
		AssignedDate: today(),
		DueDate:      data.DueDate,
		Description:  data.Description,
		Teacher:      data.Teacher,
	}
	_, err := a.homework.Update(ctx, func(cur []Homework) ([]Homework, error) {
		next := make([]Homework, 0, len(cur)+1)
		next = append(next, hw)
		next = append(next, cur...)
		return next, nil
	})
	if err != nil {
		return Homework{}, err
	}
	enqueueReconcile(ctx, a.queue, KeyHomework)
	return hw, nil
}

// UpdateHomework replaces the matching-id assignment wholesale. Admin only.
func (a *Academics) UpdateHomework(ctx context.Context, sess Session, hw Homework) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "update homework", Role: sess.Role}
	}
	if err := validateHomework(hw.Subject, hw.Title, hw.DueDate); err != nil {
		return err
	}
	_, err := a.homework.Update(ctx, func(cur []Homework) ([]Homework, error) {
		next := make([]Homework, len(cur))
		found := false
		for i, existing := range cur {
			if existing.ID == hw.ID {
				next[i] = hw
				found = true
			} else {
				next[i] = existing
			}
		}
		if !found {
			return nil, ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		return err
	}
	enqueueReconcile(ctx, a.queue, KeyHomework)
	return nil
}

// DeleteHomework removes the matching-id assignment. Admin only.
func (a *Academics) DeleteHomework(ctx context.Context, sess Session, id string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "delete homework", Role: sess.Role}
	}
	_, err := a.homework.Update(ctx, func(cur []Homework) ([]Homework, error) {
		next := make([]Homework, 0, len(cur))
		for _, hw := range cur {
			if hw.ID != id {
				next = append(next, hw)
			}
		}
		if len(next) == len(cur) {
			return nil, ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		return err
	}
	enqueueReconcile(ctx, a.queue, KeyHomework)
	return nil
}

// SetTimetable replaces the whole weekly grid, matching how the board
// is edited: the full table is saved at once, not period by period.
// Admin only.
func (a *Academics) SetTimetable(ctx context.Context, sess Session, entries []TimetableEntry) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "set timetable", Role: sess.Role}
	}
	for _, entry := range entries {
		if entry.Day == "" {
			return &ValidationError{Fields: []FieldError{{Field: "day", Reason: "required"}}}
		}
	}
	if entries == nil {
		entries = []TimetableEntry{}
	}
	_, err := a.timetable.Update(ctx, func([]TimetableEntry) ([]TimetableEntry, error) {
		return entries, nil
	})
	if err != nil {
		return err
	}
	enqueueReconcile(ctx, a.queue, KeyTimetable)
	return nil
}
