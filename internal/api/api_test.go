package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cfdaily/cfdaily/internal/app/catalog"
	"github.com/cfdaily/cfdaily/internal/app/cycle"
	"github.com/cfdaily/cfdaily/internal/app/reconcile"
	"github.com/cfdaily/cfdaily/internal/app/streak"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/identity"
	"github.com/cfdaily/cfdaily/internal/infra/judge"
	"github.com/cfdaily/cfdaily/internal/infra/sqlite"
)

type fakeJudge struct {
	problems []domain.ProblemRef
	subs     []judge.Submission
	profiles map[string]domain.UserProfile
	infoErr  error
}

func (f *fakeJudge) Problems(ctx context.Context) ([]domain.ProblemRef, error) {
	return f.problems, nil
}

func (f *fakeJudge) UserSubmissions(ctx context.Context, handle string, count int) ([]judge.Submission, error) {
	return f.subs, nil
}

func (f *fakeJudge) UserInfo(ctx context.Context, handle string) (domain.UserProfile, error) {
	if f.infoErr != nil {
		return domain.UserProfile{}, f.infoErr
	}
	if p, ok := f.profiles[handle]; ok {
		return p, nil
	}
	return domain.UserProfile{}, domain.ErrUnknownIdentity
}

func testServer(t *testing.T, fj *fakeJudge) *Server {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat := catalog.New(db, fj, catalog.DefaultBounds())
	rec := reconcile.New(fj, 100)
	led := streak.NewLedger(db, 0)
	ids := identity.NewManager(db, fj)
	orch := cycle.New(cat, rec, led, ids)
	return NewServer(orch, led, ids, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: invalid JSON response: %v\n%s", method, path, err, w.Body.String())
	}
	return w, out
}

func TestHealthz(t *testing.T) {
	s := testServer(t, &fakeJudge{})
	w, out := doJSON(t, s.Handler(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if out["status"] != "ok" {
		t.Errorf("unexpected health body: %v", out)
	}
}

func TestDailyReturnsViewModel(t *testing.T) {
	s := testServer(t, &fakeJudge{problems: []domain.ProblemRef{
		{ContestID: 100, Index: "A", Rating: 900},
		{ContestID: 200, Index: "C", Rating: 2400},
	}})

	w, out := doJSON(t, s.Handler(), http.MethodGet, "/api/daily", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if out["identity"] != domain.GuestIdentity {
		t.Errorf("expected guest identity, got %v", out["identity"])
	}
	if _, ok := out["selection"]; !ok {
		t.Error("missing selection")
	}
	if _, ok := out["countdownSeconds"]; !ok {
		t.Error("missing countdownSeconds")
	}
}

func TestIdentityLifecycle(t *testing.T) {
	fj := &fakeJudge{
		profiles: map[string]domain.UserProfile{
			"alice": {Handle: "alice", Rating: 1543, Rank: "specialist"},
		},
	}
	s := testServer(t, fj)
	h := s.Handler()

	// Default is guest.
	_, out := doJSON(t, h, http.MethodGet, "/api/identity", "")
	if out["identity"] != domain.GuestIdentity || out["verified"] != false {
		t.Fatalf("expected guest default: %v", out)
	}

	// Verified switch caches rating and rank.
	w, out := doJSON(t, h, http.MethodPost, "/api/identity", `{"handle":"alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %v", w.Code, out)
	}
	if out["identity"] != "alice" || out["rating"] != float64(1543) || out["rank"] != "specialist" {
		t.Errorf("unexpected identity view: %v", out)
	}

	// Unknown handle falls back to guest, not an error.
	w, out = doJSON(t, h, http.MethodPost, "/api/identity", `{"handle":"nobody"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if out["identity"] != domain.GuestIdentity {
		t.Errorf("unknown handle should land on guest: %v", out)
	}
}

func TestIdentityUnreachableJudgeKeepsPrevious(t *testing.T) {
	fj := &fakeJudge{
		profiles: map[string]domain.UserProfile{
			"alice": {Handle: "alice", Rating: 1543},
		},
	}
	s := testServer(t, fj)
	h := s.Handler()

	doJSON(t, h, http.MethodPost, "/api/identity", `{"handle":"alice"}`)

	fj.infoErr = domain.ErrRemoteUnavailable
	w, _ := doJSON(t, h, http.MethodPost, "/api/identity", `{"handle":"bob"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	fj.infoErr = nil
	_, out := doJSON(t, h, http.MethodGet, "/api/identity", "")
	if out["identity"] != "alice" {
		t.Errorf("identity changed despite failed verification: %v", out)
	}
}

func TestIdentityBadBody(t *testing.T) {
	s := testServer(t, &fakeJudge{})
	w, _ := doJSON(t, s.Handler(), http.MethodPost, "/api/identity", `{bad`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStreakEndpoint(t *testing.T) {
	s := testServer(t, &fakeJudge{})
	w, out := doJSON(t, s.Handler(), http.MethodGet, "/api/streak", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	streakBody, ok := out["streak"].(map[string]any)
	if !ok {
		t.Fatalf("missing streak body: %v", out)
	}
	if streakBody["personalizedStreak"] != float64(0) {
		t.Errorf("fresh state should be zero: %v", streakBody)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	s := testServer(t, &fakeJudge{})
	h := s.Handler()

	w, out := doJSON(t, h, http.MethodGet, "/api/calendar?month=2024-03", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if out["month"] != "2024-03" {
		t.Errorf("unexpected month: %v", out["month"])
	}
	days, ok := out["days"].([]any)
	if !ok || len(days) != 31 {
		t.Errorf("expected 31 days for March, got %v", out["days"])
	}

	// No month param defaults to the current month.
	w, _ = doJSON(t, h, http.MethodGet, "/api/calendar", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestMetricsGated(t *testing.T) {
	s := testServer(t, &fakeJudge{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("metrics should be off by default, got %d", w.Code)
	}

	s.EnableMetrics()
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics enabled but got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(t, &fakeJudge{})
	req := httptest.NewRequest(http.MethodOptions, "/api/daily", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("preflight status %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing CORS header")
	}
}
