package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/config"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/docstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/identity"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/textgen"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.App{
		Env:             "test",
		JWTIssuer:       "vidyavahini-portal",
		JWTSigningKey:   "test-signing-key",
		SessionTTL:      time.Hour,
		SchoolID:        "school-1",
		SchoolName:      "Test School",
		RateLimitPerMin: 10000,
	}

	p := portal.New(kvstore.NewMemoryBackend(), kvstore.NewMemoryBus(), nil)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("portal load failed: %v", err)
	}

	srv := New(cfg, p,
		identity.New("", true),
		docstore.New("", true),
		textgen.New("", true),
		nil, nil, nil)
	return srv, srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, path string) (string, portal.Session) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, path, "", map[string]string{
		"email":    "someone@school.test",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s = %d: %s", path, w.Code, w.Body.String())
	}
	var out struct {
		AccessToken string         `json:"access_token"`
		Session     portal.Session `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatalf("login returned empty token")
	}
	return out.AccessToken, out.Session
}

func TestHealthz(t *testing.T) {
	_, r := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
}

func TestAdminLoginBindsSchool(t *testing.T) {
	_, r := newTestServer(t)
	_, sess := login(t, r, "/v1/auth/admin/login")
	if sess.Role != portal.RoleAdmin {
		t.Fatalf("role = %s, want admin", sess.Role)
	}
	if sess.SchoolID != "school-1" || sess.SchoolName != "Test School" {
		t.Fatalf("school binding missing: %+v", sess)
	}
}

func TestParentLoginBindsStudent(t *testing.T) {
	_, r := newTestServer(t)
	_, sess := login(t, r, "/v1/auth/parent/login")
	if sess.Role != portal.RoleParent {
		t.Fatalf("role = %s, want parent", sess.Role)
	}
	if sess.StudentID == "" {
		t.Fatalf("parent session must bind a student")
	}
}

func TestStudentRoutesRequireToken(t *testing.T) {
	_, r := newTestServer(t)
	if w := doJSON(t, r, http.MethodGet, "/v1/students", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/students", "not-a-token", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", w.Code)
	}
}

func TestAdminAddsStudentParentCannot(t *testing.T) {
	_, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")
	parentTok, _ := login(t, r, "/v1/auth/parent/login")

	body := map[string]string{"name": "Asha", "class": "5A", "rollNumber": "12"}
	w := doJSON(t, r, http.MethodPost, "/v1/students", adminTok, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin add = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/students", parentTok, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("parent add = %d, want 403", w.Code)
	}
}

func TestFeeFlowOverHTTP(t *testing.T) {
	srv, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")

	w := doJSON(t, r, http.MethodPost, "/v1/students", adminTok, map[string]string{
		"name": "Ravi", "class": "6B", "rollNumber": "4",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add student = %d: %s", w.Code, w.Body.String())
	}
	var st portal.Student
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode student: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/students/"+st.ID+"/fees", adminTok, map[string]any{
		"type": "tuition", "amount": 1200.0, "dueDate": "2026-12-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add fee = %d: %s", w.Code, w.Body.String())
	}
	var fee portal.FeeRecord
	if err := json.Unmarshal(w.Body.Bytes(), &fee); err != nil {
		t.Fatalf("decode fee: %v", err)
	}

	// Paying before approval conflicts with the lifecycle.
	payPath := fmt.Sprintf("/v1/students/%s/fees/%s/pay", st.ID, fee.ID)
	if w := doJSON(t, r, http.MethodPost, payPath, adminTok, nil); w.Code != http.StatusConflict {
		t.Fatalf("pay pending = %d, want 409", w.Code)
	}

	approvePath := fmt.Sprintf("/v1/students/%s/fees/%s/approve", st.ID, fee.ID)
	if w := doJSON(t, r, http.MethodPost, approvePath, adminTok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("approve = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, payPath, adminTok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("pay approved = %d", w.Code)
	}

	got, err := srv.portal.Students.Get(st.ID)
	if err != nil || got.Fees[0].Status != portal.FeePaid {
		t.Fatalf("fee not settled: %+v err=%v", got.Fees, err)
	}
}

func TestAnnouncementsOverHTTP(t *testing.T) {
	_, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")
	parentTok, _ := login(t, r, "/v1/auth/parent/login")

	w := doJSON(t, r, http.MethodPost, "/v1/announcements", adminTok, map[string]string{
		"title": "Sports day", "content": "Friday on the main ground",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/v1/announcements", parentTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var out struct {
		Announcements []portal.Announcement `json:"announcements"`
		Unread        int                   `json:"unread"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(out.Announcements) != 1 || out.Unread != 1 {
		t.Fatalf("unexpected board state: %+v", out)
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/announcements/ack", parentTok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("ack = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/announcements", parentTok, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Unread != 0 {
		t.Fatalf("unread after ack = %d, want 0", out.Unread)
	}
}

func TestUploadWithoutCDNUnavailable(t *testing.T) {
	_, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")
	w := doJSON(t, r, http.MethodPost, "/v1/upload", adminTok, map[string]string{"data": "data:image/png;base64,aGk="})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("upload without cdn = %d, want 503", w.Code)
	}
}

func TestPublicAboutAndLanguage(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/v1/site/about", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("about = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/v1/preferences/language", "", map[string]string{"language": "kn"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("set language = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/v1/preferences/language", "", nil)
	var out struct {
		Language string `json:"language"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Language != "kn" {
		t.Fatalf("language = %q, want kn", out.Language)
	}
}

func TestHomeworkOverHTTP(t *testing.T) {
	_, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")
	parentTok, _ := login(t, r, "/v1/auth/parent/login")

	w := doJSON(t, r, http.MethodPost, "/v1/homework", adminTok, map[string]string{
		"subject": "Mathematics", "title": "Algebra Chapter 5", "dueDate": "2026-09-12",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add homework = %d: %s", w.Code, w.Body.String())
	}
	var hw portal.Homework
	if err := json.Unmarshal(w.Body.Bytes(), &hw); err != nil {
		t.Fatalf("decode homework: %v", err)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/homework", parentTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list homework = %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/homework", parentTok, map[string]string{
		"subject": "x", "title": "y", "dueDate": "2026-09-12",
	}); w.Code != http.StatusForbidden {
		t.Fatalf("parent add homework = %d, want 403", w.Code)
	}

	if w := doJSON(t, r, http.MethodDelete, "/v1/homework/"+hw.ID, adminTok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete homework = %d", w.Code)
	}
}

func TestTimetableOverHTTP(t *testing.T) {
	_, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")

	body := map[string]any{"timetable": []portal.TimetableEntry{{
		Day:     "Monday",
		Periods: []portal.Period{{Time: "09:00 - 10:00", Subject: "Mathematics", Teacher: "Mr. Gupta"}},
	}}}
	if w := doJSON(t, r, http.MethodPut, "/v1/timetable", adminTok, body); w.Code != http.StatusOK {
		t.Fatalf("set timetable = %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/v1/timetable", adminTok, nil)
	var out struct {
		Timetable []portal.TimetableEntry `json:"timetable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode timetable: %v", err)
	}
	if len(out.Timetable) != 1 || out.Timetable[0].Day != "Monday" {
		t.Fatalf("unexpected timetable %+v", out.Timetable)
	}
}

func TestFeeDescriptionGeneration(t *testing.T) {
	_, r := newTestServer(t)
	adminTok, _ := login(t, r, "/v1/auth/admin/login")
	parentTok, _ := login(t, r, "/v1/auth/parent/login")

	body := map[string]any{"fee_type": "tuition", "class_level": "5", "amount": 1200.0}
	w := doJSON(t, r, http.MethodPost, "/v1/ai/fee-description", adminTok, body)
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/ai/fee-description", parentTok, body); w.Code != http.StatusForbidden {
		t.Fatalf("parent generate = %d, want 403", w.Code)
	}
}
