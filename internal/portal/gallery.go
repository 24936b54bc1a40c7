package portal

import (
	"context"

	"github.com/google/uuid"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// Gallery manages school media. Photos and videos are two
// independently persisted values with no cross-kind invariant.
type Gallery struct {
	photos *kvstore.Store[[]GalleryItem]
	videos *kvstore.Store[[]GalleryItem]
	queue  queue.Queue
}

// NewGallery creates the service over the shared backend and bus.
func NewGallery(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Gallery {
	return &Gallery{
		photos: kvstore.New(KeyGalleryPhotos, []GalleryItem{}, backend, bus),
		videos: kvstore.New(KeyGalleryVideos, []GalleryItem{}, backend, bus),
		queue:  q,
	}
}

// Photos returns the photo sub-collection, newest first.
func (g *Gallery) Photos() []GalleryItem { return g.photos.Get() }

// Videos returns the video sub-collection, newest first.
func (g *Gallery) Videos() []GalleryItem { return g.videos.Get() }

func (g *Gallery) storeFor(kind GalleryKind) (*kvstore.Store[[]GalleryItem], error) {
	switch kind {
	case GalleryPhoto:
		return g.photos, nil
	case GalleryVideo:
		return g.videos, nil
	}
	return nil, &ValidationError{Fields: []FieldError{{Field: "kind", Reason: "must be photo or video"}}}
}

// AddItem prepends media to the photo or video collection per kind.
// The id is always assigned here; caller-supplied ids are discarded so
// the collection never holds duplicates. Admin only.
func (g *Gallery) AddItem(ctx context.Context, sess Session, kind GalleryKind, item GalleryItem) (GalleryItem, error) {
	if !sess.IsAdmin() {
		return GalleryItem{}, &AuthorizationError{Verb: "add gallery item", Role: sess.Role}
	}
	store, err := g.storeFor(kind)
	if err != nil {
		return GalleryItem{}, err
	}
	if item.ImageURL == "" {
		return GalleryItem{}, &ValidationError{Fields: []FieldError{{Field: "imageUrl", Reason: "required"}}}
	}
	item.ID = uuid.NewString()
	_, err = store.Update(ctx, func(cur []GalleryItem) ([]GalleryItem, error) {
		next := make([]GalleryItem, 0, len(cur)+1)
		next = append(next, item)
		next = append(next, cur...)
		return next, nil
	})
	if err != nil {
		return GalleryItem{}, err
	}
	enqueueReconcile(ctx, g.queue, store.Key())
	return item, nil
}

// DeleteItem removes matching media from the relevant collection.
// Admin only.
func (g *Gallery) DeleteItem(ctx context.Context, sess Session, kind GalleryKind, id string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "delete gallery item", Role: sess.Role}
	}
	store, err := g.storeFor(kind)
	if err != nil {
		return err
	}
	_, err = store.Update(ctx, func(cur []GalleryItem) ([]GalleryItem, error) {
		next := make([]GalleryItem, 0, len(cur))
		for _, it := range cur {
			if it.ID != id {
				next = append(next, it)
			}
		}
		if len(next) == len(cur) {
			return cur, ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		return err
	}
	enqueueReconcile(ctx, g.queue, store.Key())
	return nil
}
