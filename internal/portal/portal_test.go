package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
)

func TestPortalSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()

	p := New(backend, nil, nil)
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	st, err := p.Students.Add(ctx, admin, NewStudent{Name: "Asha", Class: "5A", RollNumber: "12"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := p.Announcements.Add(ctx, admin, "Sports day", "Friday"); err != nil {
		t.Fatalf("announce failed: %v", err)
	}
	if err := p.Site.SetAbout(ctx, admin, "A small school with big plans."); err != nil {
		t.Fatalf("set about failed: %v", err)
	}

	// A second portal over the same backend stands in for a restart.
	p2 := New(backend, nil, nil)
	if err := p2.Load(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := p2.Students.List(); len(got) != 1 || got[0].ID != st.ID {
		t.Fatalf("students not rehydrated: %+v", got)
	}
	if p2.Announcements.UnreadCount() != 1 {
		t.Fatalf("unread counter not rehydrated, got %d", p2.Announcements.UnreadCount())
	}
	if p2.Site.About() != "A small school with big plans." {
		t.Fatalf("about not rehydrated: %q", p2.Site.About())
	}
}

func TestSiteContentDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	p := New(kvstore.NewMemoryBackend(), nil, nil)
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if p.Site.About() != DefaultAbout {
		t.Fatalf("fresh portal should serve the default about text")
	}
	var verr *ValidationError
	if err := p.Site.SetAbout(ctx, admin, ""); !errors.As(err, &verr) {
		t.Fatalf("empty about must be rejected, got %v", err)
	}
	var aerr *AuthorizationError
	if err := p.Site.SetAbout(ctx, parent("1"), "x"); !errors.As(err, &aerr) {
		t.Fatalf("parents must not edit site content, got %v", err)
	}
}

func TestStaffCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStaff(kvstore.NewMemoryBackend(), nil, nil)

	member, err := s.Add(ctx, admin, StaffMember{Name: "Mrs. Rao", Role: "Teacher", Subject: "Maths"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if member.ID == "" {
		t.Fatalf("expected generated id")
	}

	member.Subject = "Science"
	if err := s.Update(ctx, admin, member); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := s.List(); got[0].Subject != "Science" {
		t.Fatalf("update not applied: %+v", got[0])
	}

	if err := s.Delete(ctx, admin, member.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(s.List()) != 0 {
		t.Fatalf("staff not deleted")
	}

	var verr *ValidationError
	if _, err := s.Add(ctx, admin, StaffMember{}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var aerr *AuthorizationError
	if _, err := s.Add(ctx, parent("1"), StaffMember{Name: "x", Role: "y"}); !errors.As(err, &aerr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestTransportCRUD(t *testing.T) {
	ctx := context.Background()
	tr := NewTransport(kvstore.NewMemoryBackend(), nil, nil)

	route, err := tr.Add(ctx, admin, BusRoute{
		BusNumber: "KA-01-1234",
		Route:     "Market Road",
		Driver:    Driver{Name: "Suresh", Mobile: "9000000000"},
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if route.Stops == nil {
		t.Fatalf("stops should be initialized to an empty slice")
	}

	route.Stops = []TransportStop{{Stop: "Market", PickupTime: "07:30", DropTime: "16:10"}}
	if err := tr.Update(ctx, admin, route); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := tr.List(); len(got[0].Stops) != 1 {
		t.Fatalf("stop edit not applied: %+v", got[0])
	}

	if err := tr.Delete(ctx, admin, route.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := tr.Delete(ctx, admin, route.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	p := NewPreferences(kvstore.NewMemoryBackend(), nil, nil)

	if p.Language() != LanguageEnglish {
		t.Fatalf("default language should be en, got %s", p.Language())
	}
	if err := p.SetLanguage(ctx, LanguageKannada); err != nil {
		t.Fatalf("set language failed: %v", err)
	}
	if p.Language() != LanguageKannada {
		t.Fatalf("language not switched, got %s", p.Language())
	}
	var verr *ValidationError
	if err := p.SetLanguage(ctx, Language("fr")); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
