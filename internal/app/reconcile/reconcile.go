// Package reconcile matches a day's selected problems against the remote
// judge's accepted submissions. The reconciler is pure with respect to
// recorded state: it never reads or writes the streak ledger, it only
// reports what the remote source of truth says about today. On remote
// failure the caller must treat the result as "unknown", never as "not
// solved".
package reconcile

import (
	"context"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/judge"
)

// SubmissionSource is the slice of the judge client the reconciler needs.
type SubmissionSource interface {
	UserSubmissions(ctx context.Context, handle string, count int) ([]judge.Submission, error)
}

// DefaultLookback is the default submission window. A heuristic bound
// sufficient to cover a full day of activity under normal usage; known
// limitation for very high-volume submitters.
const DefaultLookback = 100

// Result reports which of the day's picks the identity solved.
type Result struct {
	SkillMatchedSolved bool
	UniversalSolved    bool
	SolvedIDs          []string
}

// Reconciler queries the judge for recent accepted submissions.
type Reconciler struct {
	source   SubmissionSource
	lookback int
}

// New creates a reconciler. lookback <= 0 uses DefaultLookback.
func New(source SubmissionSource, lookback int) *Reconciler {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Reconciler{source: source, lookback: lookback}
}

// Reconcile fetches the identity's recent submissions and matches the
// accepted ones dated day (UTC) against the selection. Matching identity
// is the (contestId, index) pair. Returns domain.ErrRemoteUnavailable
// unmodified when the judge is unreachable.
func (r *Reconciler) Reconcile(ctx context.Context, identity, day string, sel domain.DailySelection) (Result, error) {
	var res Result

	subs, err := r.source.UserSubmissions(ctx, identity, r.lookback)
	if err != nil {
		return res, err
	}

	seen := map[string]bool{}
	for _, sub := range subs {
		if sub.Verdict != judge.VerdictAccepted {
			continue
		}
		if daykey.Of(time.Unix(sub.CreationTimeSeconds, 0)) != day {
			continue
		}

		if sel.SkillMatched != nil && sub.Problem.Same(*sel.SkillMatched) {
			res.SkillMatchedSolved = true
			if id := sub.Problem.ID(); !seen[id] {
				seen[id] = true
				res.SolvedIDs = append(res.SolvedIDs, id)
			}
		}
		if sel.Universal != nil && sub.Problem.Same(*sel.Universal) {
			res.UniversalSolved = true
			if id := sub.Problem.ID(); !seen[id] {
				seen[id] = true
				res.SolvedIDs = append(res.SolvedIDs, id)
			}
		}
	}

	return res, nil
}
