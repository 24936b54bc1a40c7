package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Backend is the durable half of a store: one JSON value per key.
type Backend interface {
	// Load returns the stored bytes for key, or found=false when the key
	// has never been written.
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	// Save replaces the stored bytes for key.
	Save(ctx context.Context, key string, value []byte) error
}

// Event is a change notification fanned out to every context sharing a bus.
type Event struct {
	Origin string          `json:"origin"`
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
}

// Bus delivers change events between execution contexts. Subscribers
// receive every event published on the bus, including their own; stores
// filter by origin so a context never reacts to its own writes.
type Bus interface {
	Publish(ctx context.Context, evt Event) error
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Store holds one JSON-serializable value in memory, mirrors every update
// to the backend synchronously, and replaces its value wholesale when a
// different context writes the same key.
type Store[T any] struct {
	key     string
	origin  string
	def     T
	backend Backend
	bus     Bus

	mu    sync.RWMutex
	value T
}

// New creates a store for key. The value is def until Load hydrates it.
func New[T any](key string, def T, backend Backend, bus Bus) *Store[T] {
	return &Store[T]{
		key:     key,
		origin:  uuid.NewString(),
		def:     def,
		backend: backend,
		bus:     bus,
		value:   def,
	}
}

// Key returns the backend key the store is bound to.
func (s *Store[T]) Key() string { return s.key }

// Load hydrates the in-memory value from the backend. Missing or
// malformed stored data falls back to the default value; a decode
// failure is logged and never fatal. Loading twice with no intervening
// write yields the same value.
func (s *Store[T]) Load(ctx context.Context) error {
	raw, found, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("kvstore: load %s: %w", s.key, err)
	}
	loads.WithLabelValues(s.key).Inc()

	val := s.def
	if found {
		if err := json.Unmarshal(raw, &val); err != nil {
			log.Printf("kvstore: stored value for %s is malformed, using default: %v", s.key, err)
			decodeFailures.WithLabelValues(s.key).Inc()
			val = s.def
		}
	}

	s.mu.Lock()
	s.value = val
	s.mu.Unlock()
	return nil
}

// Get returns the current in-memory value. Callers must treat it as
// immutable; mutations go through Update with a freshly built value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Update computes a replacement value under the store lock, then writes
// it through to the backend and notifies other contexts. The backend
// write happens synchronously with the in-memory swap so a crash after
// Update returns never loses the mutation. If fn returns an error
// nothing changes.
func (s *Store[T]) Update(ctx context.Context, fn func(cur T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.value)
	if err != nil {
		var zero T
		return zero, err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("kvstore: encode %s: %w", s.key, err)
	}
	if err := s.backend.Save(ctx, s.key, raw); err != nil {
		var zero T
		return zero, fmt.Errorf("kvstore: save %s: %w", s.key, err)
	}
	s.value = next
	saves.WithLabelValues(s.key).Inc()

	if s.bus != nil {
		if err := s.bus.Publish(ctx, Event{Origin: s.origin, Key: s.key, Value: raw}); err != nil {
			// The durable write already succeeded; other contexts catch
			// up on their next hydration.
			log.Printf("kvstore: publish change for %s failed: %v", s.key, err)
		}
	}
	return next, nil
}

// Watch consumes bus events until ctx is done, replacing the in-memory
// value wholesale whenever another context writes this store's key.
// Events from this store's own origin are ignored, and an undecodable
// payload leaves the current value untouched.
func (s *Store[T]) Watch(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	events, err := s.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("kvstore: subscribe %s: %w", s.key, err)
	}
	go func() {
		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return
				}
				s.apply(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (s *Store[T]) apply(evt Event) {
	if evt.Key != s.key || evt.Origin == s.origin {
		return
	}
	var val T
	if err := json.Unmarshal(evt.Value, &val); err != nil {
		log.Printf("kvstore: dropping malformed change event for %s: %v", s.key, err)
		decodeFailures.WithLabelValues(s.key).Inc()
		return
	}
	s.mu.Lock()
	s.value = val
	s.mu.Unlock()
	applied.WithLabelValues(s.key).Inc()
}
