package portal

import (
	"context"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// DefaultAbout is the site text served before an admin customizes it.
const DefaultAbout = "VidyaVahini is a modern portal for government schools, designed to " +
	"bridge the communication gap between parents, students and teachers. Our mission is to " +
	"provide an easy-to-use platform for all school-related information, promoting " +
	"transparency and collaboration."

// SiteContent manages the single freeform about text: the degenerate
// one-value case of the collection pattern.
type SiteContent struct {
	store *kvstore.Store[string]
	queue queue.Queue
}

// NewSiteContent creates the service over the shared backend and bus.
func NewSiteContent(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *SiteContent {
	return &SiteContent{
		store: kvstore.New(KeyAbout, DefaultAbout, backend, bus),
		queue: q,
	}
}

// About returns the current about text.
func (s *SiteContent) About() string { return s.store.Get() }

// SetAbout replaces the about text. Admin only.
func (s *SiteContent) SetAbout(ctx context.Context, sess Session, content string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "set site content", Role: sess.Role}
	}
	if content == "" {
		return &ValidationError{Fields: []FieldError{{Field: "content", Reason: "required"}}}
	}
	if _, err := s.store.Update(ctx, func(string) (string, error) { return content, nil }); err != nil {
		return err
	}
	enqueueReconcile(ctx, s.queue, KeyAbout)
	return nil
}
