// Package judge is the HTTP client for the remote judge's read-only REST
// API. The API is unauthenticated, rate-limit-prone, and sometimes
// unavailable: every call carries a bounded timeout and a small number of
// retries with exponential backoff, and a call that exhausts its retries
// surfaces domain.ErrRemoteUnavailable with no partial state mutation.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/cfdaily/cfdaily/internal/domain"
)

// DefaultBaseURL is the production judge API root.
const DefaultBaseURL = "https://codeforces.com/api"

// Config controls client behavior.
type Config struct {
	BaseURL   string
	Timeout   time.Duration // per-request timeout
	Attempts  int           // total attempts per call
	BaseDelay time.Duration // first backoff delay, doubles per attempt
}

// DefaultConfig returns production client defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   10 * time.Second,
		Attempts:  3,
		BaseDelay: time.Second,
	}
}

// Client talks to the judge API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a judge API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope is the judge API's top-level response shape. Success is
// status == "OK"; anything else is ErrRemoteUnavailable to callers.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment,omitempty"`
	Result  json.RawMessage `json:"result"`
}

// Submission is one entry of a user.status result window.
type Submission struct {
	CreationTimeSeconds int64             `json:"creationTimeSeconds"`
	Verdict             string            `json:"verdict"`
	Problem             domain.ProblemRef `json:"problem"`
}

// VerdictAccepted is the judge's verdict string for an accepted run.
const VerdictAccepted = "OK"

// Problems fetches the full problem catalog.
func (c *Client) Problems(ctx context.Context) ([]domain.ProblemRef, error) {
	var result struct {
		Problems []domain.ProblemRef `json:"problems"`
	}
	if err := c.call(ctx, "problemset.problems", nil, &result); err != nil {
		return nil, err
	}
	return result.Problems, nil
}

// UserInfo fetches the profile for a handle. An empty result signals an
// unknown user and returns domain.ErrUnknownIdentity.
func (c *Client) UserInfo(ctx context.Context, handle string) (domain.UserProfile, error) {
	var result []domain.UserProfile
	params := url.Values{"handles": {handle}}
	if err := c.call(ctx, "user.info", params, &result); err != nil {
		return domain.UserProfile{}, err
	}
	if len(result) == 0 {
		return domain.UserProfile{}, fmt.Errorf("%w: %s", domain.ErrUnknownIdentity, handle)
	}
	return result[0], nil
}

// UserSubmissions fetches the most recent count submissions for a handle,
// most-recent-first. The bound is a heuristic sufficient to cover a full
// day of normal activity, not a guarantee.
func (c *Client) UserSubmissions(ctx context.Context, handle string, count int) ([]Submission, error) {
	var result []Submission
	params := url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {fmt.Sprintf("%d", count)},
	}
	if err := c.call(ctx, "user.status", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// call performs one API method with retries. Any transport error,
// non-2xx response, or non-OK envelope counts as a failed attempt.
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := c.cfg.BaseURL + "/" + method
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		if attempt > 1 {
			delay := c.cfg.BaseDelay << uint(attempt-2)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, method, ctx.Err())
			}
		}

		lastErr = c.once(ctx, endpoint, out)
		if lastErr == nil {
			return nil
		}
		log.Printf("[judge] attempt %d/%d failed for %s: %v", attempt, c.cfg.Attempts, method, lastErr)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, method, lastErr)
}

func (c *Client) once(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "OK" {
		return fmt.Errorf("api status %q: %s", env.Status, env.Comment)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
