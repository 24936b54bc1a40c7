package portal

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

const dateLayout = "2006-01-02"

func today() string { return time.Now().UTC().Format(dateLayout) }

// ReconcileRequest asks the reconciler to mirror one collection's
// current snapshot to the document store.
type ReconcileRequest struct {
	Key     string `json:"key"`
	Attempt int    `json:"attempt"`
}

// MessageReconcile is the queue message type carrying a ReconcileRequest.
const MessageReconcile = "reconcile"

// Portal bundles every domain collection over a shared backend and bus.
// It is built once at startup and passed to whoever needs it; there is
// no package-level state.
type Portal struct {
	Students      *Students
	Announcements *Announcements
	Gallery       *Gallery
	Site          *SiteContent
	Staff         *Staff
	Transport     *Transport
	Academics     *Academics
	Prefs         *Preferences
}

// New wires all collections. q may be nil when no reconciliation is
// wanted (tests, single-process setups).
func New(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Portal {
	return &Portal{
		Students:      NewStudents(backend, bus, q),
		Announcements: NewAnnouncements(backend, bus, q),
		Gallery:       NewGallery(backend, bus, q),
		Site:          NewSiteContent(backend, bus, q),
		Staff:         NewStaff(backend, bus, q),
		Transport:     NewTransport(backend, bus, q),
		Academics:     NewAcademics(backend, bus, q),
		Prefs:         NewPreferences(backend, bus, q),
	}
}

// Load hydrates every collection from the backend.
func (p *Portal) Load(ctx context.Context) error {
	for _, s := range p.stores() {
		if err := s.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Watch starts the cross-context listeners for every collection.
func (p *Portal) Watch(ctx context.Context) error {
	for _, s := range p.stores() {
		if err := s.Watch(ctx); err != nil {
			return err
		}
	}
	return nil
}

type loader interface {
	Load(ctx context.Context) error
	Watch(ctx context.Context) error
}

func (p *Portal) stores() []loader {
	return []loader{
		p.Students.store,
		p.Announcements.store,
		p.Gallery.photos,
		p.Gallery.videos,
		p.Site.store,
		p.Staff.store,
		p.Transport.store,
		p.Academics.homework,
		p.Academics.timetable,
		p.Prefs.store,
	}
}

// enqueueReconcile hands a collection key to the reconciler. A full
// snapshot is mirrored, so losing an enqueue only delays convergence
// until the next mutation of the same collection.
func enqueueReconcile(ctx context.Context, q queue.Queue, key string) {
	if q == nil {
		return
	}
	body, _ := json.Marshal(ReconcileRequest{Key: key})
	if err := q.Publish(ctx, queue.Message{Type: MessageReconcile, Body: body}); err != nil {
		log.Printf("portal: reconcile enqueue for %s failed: %v", key, err)
	}
}
