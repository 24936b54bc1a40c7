package kvstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps state in a map. Used for dev and tests, mirroring
// the queue package's in-memory backend choice.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

// Load returns the stored bytes for key.
func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

// Save replaces the stored bytes for key.
func (b *MemoryBackend) Save(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	b.mu.Lock()
	b.values[key] = cp
	b.mu.Unlock()
	return nil
}

// MemoryBus fans events out to every subscriber over buffered channels.
// Slow subscribers drop events rather than block writers; a dropped
// event is recovered on the subscriber's next hydration.
type MemoryBus struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewMemoryBus creates a bus with no subscribers.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Publish delivers evt to all current subscribers.
func (b *MemoryBus) Publish(_ context.Context, evt Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber channel, closed when ctx is done.
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
