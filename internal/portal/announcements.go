package portal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// announcementState is the persisted shape: the items plus the unread
// counter, which is stored state rather than something derived.
type announcementState struct {
	Items  []Announcement `json:"items"`
	Unread int            `json:"unread"`
}

// Announcements manages the school-wide notice board.
type Announcements struct {
	store *kvstore.Store[announcementState]
	queue queue.Queue
}

// NewAnnouncements creates the service over the shared backend and bus.
func NewAnnouncements(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Announcements {
	return &Announcements{
		store: kvstore.New(KeyAnnouncements, announcementState{Items: []Announcement{}}, backend, bus),
		queue: q,
	}
}

// List returns all announcements, newest first.
func (a *Announcements) List() []Announcement { return a.store.Get().Items }

// UnreadCount returns announcements added since the last acknowledgment.
func (a *Announcements) UnreadCount() int { return a.store.Get().Unread }

func (a *Announcements) mutate(ctx context.Context, fn func(announcementState) (announcementState, error)) error {
	if _, err := a.store.Update(ctx, fn); err != nil {
		return err
	}
	enqueueReconcile(ctx, a.queue, KeyAnnouncements)
	return nil
}

// Add prepends a new announcement and bumps the unread counter by
// exactly one. Admin only.
func (a *Announcements) Add(ctx context.Context, sess Session, title, content string) (Announcement, error) {
	if !sess.IsAdmin() {
		return Announcement{}, &AuthorizationError{Verb: "add announcement", Role: sess.Role}
	}
	var fields []FieldError
	if title == "" {
		fields = append(fields, FieldError{Field: "title", Reason: "required"})
	}
	if content == "" {
		fields = append(fields, FieldError{Field: "content", Reason: "required"})
	}
	if len(fields) > 0 {
		return Announcement{}, &ValidationError{Fields: fields}
	}

	ann := Announcement{
		ID:      uuid.NewString(),
		Title:   title,
		Content: content,
		Date:    time.Now().UTC().Format(time.RFC3339),
	}
	err := a.mutate(ctx, func(cur announcementState) (announcementState, error) {
		items := make([]Announcement, 0, len(cur.Items)+1)
		items = append(items, ann)
		items = append(items, cur.Items...)
		return announcementState{Items: items, Unread: cur.Unread + 1}, nil
	})
	if err != nil {
		return Announcement{}, err
	}
	return ann, nil
}

// Delete removes the matching announcement. The unread counter is
// deliberately untouched. Admin only.
func (a *Announcements) Delete(ctx context.Context, sess Session, id string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "delete announcement", Role: sess.Role}
	}
	return a.mutate(ctx, func(cur announcementState) (announcementState, error) {
		items := make([]Announcement, 0, len(cur.Items))
		for _, ann := range cur.Items {
			if ann.ID != id {
				items = append(items, ann)
			}
		}
		if len(items) == len(cur.Items) {
			return cur, ErrNotFound
		}
		return announcementState{Items: items, Unread: cur.Unread}, nil
	})
}

// ResetUnread acknowledges the board, setting the counter to zero. Any
// authenticated caller may acknowledge their own view.
func (a *Announcements) ResetUnread(ctx context.Context) error {
	return a.mutate(ctx, func(cur announcementState) (announcementState, error) {
		return announcementState{Items: cur.Items, Unread: 0}, nil
	})
}
