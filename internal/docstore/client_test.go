package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSkipModeAcksWritesReadsNotFound(t *testing.T) {
	ctx := context.Background()
	c := New("", true)

	if err := c.Set(ctx, "schools/s1/state", "portal-students", map[string]any{"key": "portal:students"}, false); err != nil {
		t.Fatalf("skip set should succeed: %v", err)
	}
	doc, err := c.Get(ctx, "parents", "u1")
	if err != nil || doc != nil {
		t.Fatalf("skip get should be nil, nil; got %+v, %v", doc, err)
	}
}

func TestSetMergeFlag(t *testing.T) {
	var gotMerge string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMerge = r.URL.Query().Get("merge")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	if err := c.Set(context.Background(), "schools/s1/students", "42", map[string]any{"parentId": "u9"}, true); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if gotPath != "/v1/schools/s1/students/42" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotMerge != "true" {
		t.Fatalf("merge flag not sent")
	}
}

func TestAddReturnsServerID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "doc-9"})
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	id, err := c.Add(context.Background(), "schools", map[string]any{"name": "GHPS"})
	if err != nil || id != "doc-9" {
		t.Fatalf("add = %q, %v", id, err)
	}
}

func TestQueryFiltersByField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("field"); got != "adminUid" {
			t.Fatalf("field = %s", got)
		}
		if got := r.URL.Query().Get("equals"); got != "u-1" {
			t.Fatalf("equals = %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"documents": []Document{{ID: "s-1", Fields: map[string]any{"name": "GHPS"}}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	docs, err := c.Query(context.Background(), "schools", "adminUid", "u-1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "s-1" {
		t.Fatalf("unexpected result %+v", docs)
	}
}

func TestGetMissingDocumentIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	doc, err := c.Get(context.Background(), "parents", "ghost")
	if err != nil || doc != nil {
		t.Fatalf("missing doc should be nil, nil; got %+v, %v", doc, err)
	}
}
