package judge_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/judge"
)

func testClient(t *testing.T, handler http.HandlerFunc) *judge.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return judge.NewClient(judge.Config{
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		Attempts:  3,
		BaseDelay: time.Millisecond,
	})
}

func TestProblems(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/problemset.problems" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"OK","result":{"problems":[
			{"contestId":100,"index":"A","name":"Theatre Square","rating":1000,"tags":["math"]},
			{"contestId":100,"index":"B","name":"Spreadsheets"}
		]}}`))
	})

	problems, err := c.Problems(context.Background())
	if err != nil {
		t.Fatalf("problems: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(problems))
	}
	if problems[0].ID() != "100A" || problems[0].Rating != 1000 {
		t.Errorf("unexpected first problem: %+v", problems[0])
	}
	if problems[1].Rating != 0 {
		t.Errorf("unrated problem should have rating 0, got %d", problems[1].Rating)
	}
}

func TestUserInfo(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("handles"); got != "alice" {
			t.Errorf("expected handles=alice, got %q", got)
		}
		w.Write([]byte(`{"status":"OK","result":[{"handle":"alice","rating":1543,"rank":"specialist"}]}`))
	})

	profile, err := c.UserInfo(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user info: %v", err)
	}
	if profile.Handle != "alice" || profile.Rating != 1543 {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestUserInfo_UnknownHandle(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","result":[]}`))
	})

	_, err := c.UserInfo(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrUnknownIdentity) {
		t.Errorf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestUserSubmissions(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "100" {
			t.Errorf("expected count=100, got %q", got)
		}
		w.Write([]byte(`{"status":"OK","result":[
			{"creationTimeSeconds":1710028800,"verdict":"OK","problem":{"contestId":100,"index":"A"}},
			{"creationTimeSeconds":1710028700,"verdict":"WRONG_ANSWER","problem":{"contestId":100,"index":"B"}}
		]}`))
	})

	subs, err := c.UserSubmissions(context.Background(), "alice", 100)
	if err != nil {
		t.Fatalf("submissions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	if subs[0].Verdict != judge.VerdictAccepted || subs[0].Problem.ID() != "100A" {
		t.Errorf("unexpected submission: %+v", subs[0])
	}
}

func TestCall_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"OK","result":{"problems":[]}}`))
	})

	if _, err := c.Problems(context.Background()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestCall_NonOKStatusIsRemoteUnavailable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","comment":"handle: Field should not be empty"}`))
	})

	_, err := c.Problems(context.Background())
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Errorf("expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestCall_TransportFailureIsRemoteUnavailable(t *testing.T) {
	c := judge.NewClient(judge.Config{
		BaseURL:   "http://127.0.0.1:1", // nothing listens here
		Timeout:   200 * time.Millisecond,
		Attempts:  2,
		BaseDelay: time.Millisecond,
	})

	_, err := c.Problems(context.Background())
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Errorf("expected ErrRemoteUnavailable, got %v", err)
	}
}
