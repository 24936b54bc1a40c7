package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSkipModeCannedResponses(t *testing.T) {
	ctx := context.Background()
	c := New("", true)

	userID, err := c.SignIn(ctx, "parent@example.com", "secret")
	if err != nil {
		t.Fatalf("signin failed: %v", err)
	}
	if userID != "mock-parent@example.com" {
		t.Fatalf("user id = %q", userID)
	}

	if _, err := c.SignIn(ctx, "parent@example.com", ""); CodeOf(err) != CodeInvalidCredential {
		t.Fatalf("empty password should be invalid, got %v", err)
	}

	profile, err := c.GetProfile(ctx, userID)
	if err != nil || profile == nil {
		t.Fatalf("profile failed: %v %v", profile, err)
	}
	if len(profile.StudentIDs) == 0 {
		t.Fatalf("canned profile must link a student")
	}
}

func TestSignInAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/signin" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": CodeInvalidCredential})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": "u-77"})
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	ctx := context.Background()

	userID, err := c.SignIn(ctx, "a@b.c", "right")
	if err != nil || userID != "u-77" {
		t.Fatalf("signin = %q, %v", userID, err)
	}

	_, err = c.SignIn(ctx, "a@b.c", "wrong")
	if CodeOf(err) != CodeInvalidCredential {
		t.Fatalf("expected invalid_credential, got %v", err)
	}
}

func TestGetProfileNotFoundIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	profile, err := c.GetProfile(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile != nil {
		t.Fatalf("missing profile should be nil, got %+v", profile)
	}
}

func TestNetworkFailureCode(t *testing.T) {
	c := New("http://127.0.0.1:1", false)
	_, err := c.SignIn(context.Background(), "a@b.c", "pw")
	if CodeOf(err) != CodeNetwork {
		t.Fatalf("expected network code, got %v", err)
	}
}

func TestDecodeErrorStatusMapping(t *testing.T) {
	cases := map[int]string{
		http.StatusUnauthorized: CodeInvalidCredential,
		http.StatusNotFound:     CodeUserNotFound,
		http.StatusConflict:     CodeEmailInUse,
	}
	for status, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(srv.URL, false)
		_, err := c.CreateAccount(context.Background(), "a@b.c", "pw")
		if CodeOf(err) != want {
			t.Fatalf("status %d mapped to %v, want %s", status, err, want)
		}
		srv.Close()
	}
}
