package portal

import (
	"context"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
)

// Language is a portal display language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKannada Language = "kn"
)

// Preferences persists small portal-wide settings, currently just the
// display language.
type Preferences struct {
	store *kvstore.Store[Language]
	queue queue.Queue
}

// NewPreferences creates the service over the shared backend and bus.
func NewPreferences(backend kvstore.Backend, bus kvstore.Bus, q queue.Queue) *Preferences {
	return &Preferences{
		store: kvstore.New(KeyLanguage, LanguageEnglish, backend, bus),
		queue: q,
	}
}

// Language returns the active display language.
func (p *Preferences) Language() Language { return p.store.Get() }

// SetLanguage switches the display language. Open to any caller; the
// preference is cosmetic.
func (p *Preferences) SetLanguage(ctx context.Context, lang Language) error {
	if lang != LanguageEnglish && lang != LanguageKannada {
		return &ValidationError{Fields: []FieldError{{Field: "language", Reason: "must be en or kn"}}}
	}
	if _, err := p.store.Update(ctx, func(Language) (Language, error) { return lang, nil }); err != nil {
		return err
	}
	enqueueReconcile(ctx, p.queue, KeyLanguage)
	return nil
}
