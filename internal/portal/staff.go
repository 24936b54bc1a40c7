package portal

import (
	"context"

	"github.com/google/uuid"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// Staff manages teacher and staff records.
type Staff struct {
	store *kvstore.Store[[]StaffMember]
	queue queue.Queue
}

// NewStaff creates the service over the shared backend and bus.
func NewStaff(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Staff {
	return &Staff{
		store: kvstore.New(KeyStaff, []StaffMember{}, backend, bus),
		queue: q,
	}
}

// List returns all staff members.
func (s *Staff) List() []StaffMember { return s.store.Get() }

func (s *Staff) mutate(ctx context.Context, fn func([]StaffMember) ([]StaffMember, error)) error {
	if _, err := s.store.Update(ctx, fn); err != nil {
		return err
	}
	enqueueReconcile(ctx, s.queue, KeyStaff)
	return nil
}

// Add creates a staff member with a fresh id. Admin only.
func (s *Staff) Add(ctx context.Context, sess Session, member StaffMember) (StaffMember, error) {
	if !sess.IsAdmin() {
		return StaffMember{}, &AuthorizationError{Verb: "add staff", Role: sess.Role}
	}
	var fields []FieldError
	if member.Name == "" {
		fields = append(fields, FieldError{Field: "name", Reason: "required"})
	}
	if member.Role == "" {
		fields = append(fields, FieldError{Field: "role", Reason: "required"})
	}
	if len(fields) > 0 {
		return StaffMember{}, &ValidationError{Fields: fields}
	}
	member.ID = uuid.NewString()
	err := s.mutate(ctx, func(cur []StaffMember) ([]StaffMember, error) {
		next := make([]StaffMember, 0, len(cur)+1)
		next = append(next, member)
		next = append(next, cur...)
		return next, nil
	})
	if err != nil {
		return StaffMember{}, err
	}
	return member, nil
}

// Update replaces the matching-id member wholesale. Admin only.
func (s *Staff) Update(ctx context.Context, sess Session, member StaffMember) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "update staff", Role: sess.Role}
	}
	return s.mutate(ctx, func(cur []StaffMember) ([]StaffMember, error) {
		next := make([]StaffMember, len(cur))
		found := false
		for i, m := range cur {
			if m.ID == member.ID {
				next[i] = member
				found = true
			} else {
				next[i] = m
			}
		}
		if !found {
			return nil, ErrNotFound
		}
		return next, nil
	})
}

// Delete removes the matching-id member. Admin only.
func (s *Staff) Delete(ctx context.Context, sess Session, id string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "delete staff", Role: sess.Role}
	}
	return s.mutate(ctx, func(cur []StaffMember) ([]StaffMember, error) {
		next := make([]StaffMember, 0, len(cur))
		for _, m := range cur {
			if m.ID != id {
				next = append(next, m)
			}
		}
		if len(next) == len(cur) {
			return nil, ErrNotFound
		}
		return next, nil
	})
}
