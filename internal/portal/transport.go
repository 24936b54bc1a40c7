package portal

import (
	"context"

	"github.com/google/uuid"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// Transport manages school bus routes.
type Transport struct {
	store *kvstore.Store[[]BusRoute]
	queue queue.Queue
}

// NewTransport creates the service over the shared backend and bus.
func NewTransport(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Transport {
	return &Transport{
		store: kvstore.New(KeyTransport, []BusRoute{}, backend, bus),
		queue: q,
	}
}

// List returns all bus routes.
func (t *Transport) List() []BusRoute { return t.store.Get() }

func (t *Transport) mutate(ctx context.Context, fn func([]BusRoute) ([]BusRoute, error)) error {
	if _, err := t.store.Update(ctx, fn); err != nil {
		return err
	}
	enqueueReconcile(ctx, t.queue, KeyTransport)
	return nil
}

// Add creates a route with a fresh id. Admin only.
func (t *Transport) Add(ctx context.Context, sess Session, route BusRoute) (BusRoute, error) {
	if !sess.IsAdmin() {
		return BusRoute{}, &AuthorizationError{Verb: "add bus route", Role: sess.Role}
	}
	if route.BusNumber == "" {
		return BusRoute{}, &ValidationError{Fields: []FieldError{{Field: "busNumber", Reason: "required"}}}
	}
	route.ID = uuid.NewString()
	if route.Stops == nil {
		route.Stops = []TransportStop{}
	}
	err := t.mutate(ctx, func(cur []BusRoute) ([]BusRoute, error) {
		next := make([]BusRoute, 0, len(cur)+1)
		next = append(next, route)
		next = append(next, cur...)
		return next, nil
	})
	if err != nil {
		return BusRoute{}, err
	}
	return route, nil
}

// Update replaces the matching-id route wholesale, covering driver
// reassignment and stop edits. Admin only.
func (t *Transport) Update(ctx context.Context, sess Session, route BusRoute) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "update bus route", Role: sess.Role}
	}
	return t.mutate(ctx, func(cur []BusRoute) ([]BusRoute, error) {
		next := make([]BusRoute, len(cur))
		found := false
		for i, r := range cur {
			if r.ID == route.ID {
				next[i] = route
				found = true
			} else {
				next[i] = r
			}
		}
		if !found {
			return nil, ErrNotFound
		}
		return next, nil
	})
}

// Delete removes the matching-id route. Admin only.
func (t *Transport) Delete(ctx context.Context, sess Session, id string) error {
	if !sess.IsAdmin() {
		return &AuthorizationError{Verb: "delete bus route", Role: sess.Role}
	}
	return t.mutate(ctx, func(cur []BusRoute) ([]BusRoute, error) {
		next := make([]BusRoute, 0, len(cur))
		for _, r := range cur {
			if r.ID != id {
				next = append(next, r)
			}
		}
		if len(next) == len(cur) {
			return nil, ErrNotFound
		}
		return next, nil
	})
}
