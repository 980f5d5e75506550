package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/catalog"
	"github.com/cfdaily/cfdaily/internal/app/reconcile"
	"github.com/cfdaily/cfdaily/internal/app/streak"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/identity"
	"github.com/cfdaily/cfdaily/internal/infra/judge"
	"github.com/cfdaily/cfdaily/internal/infra/sqlite"
)

// fakeJudge implements the catalog, reconciler, and identity slices of
// the judge client against fixed data.
type fakeJudge struct {
	problems    []domain.ProblemRef
	problemsErr error
	subs        []judge.Submission
	subsErr     error
	profiles    map[string]domain.UserProfile
}

func (f *fakeJudge) Problems(ctx context.Context) ([]domain.ProblemRef, error) {
	if f.problemsErr != nil {
		return nil, f.problemsErr
	}
	return f.problems, nil
}

func (f *fakeJudge) UserSubmissions(ctx context.Context, handle string, count int) ([]judge.Submission, error) {
	if f.subsErr != nil {
		return nil, f.subsErr
	}
	return f.subs, nil
}

func (f *fakeJudge) UserInfo(ctx context.Context, handle string) (domain.UserProfile, error) {
	if p, ok := f.profiles[handle]; ok {
		return p, nil
	}
	return domain.UserProfile{}, domain.ErrUnknownIdentity
}

const testDay = "2024-03-10"

func fixture(t *testing.T, fj *fakeJudge) (*Orchestrator, *sqlite.DB) {
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
	return New(cat, rec, led, ids), db
}

func problemsFixture() []domain.ProblemRef {
	return []domain.ProblemRef{
		{ContestID: 100, Index: "A", Rating: 900},
		{ContestID: 100, Index: "B", Rating: 1300},
		{ContestID: 200, Index: "A", Rating: 1400},
		{ContestID: 200, Index: "C", Rating: 2400},
	}
}

func acceptedOn(day string, p domain.ProblemRef) judge.Submission {
	t, _ := time.Parse("2006-01-02", day)
	return judge.Submission{
		CreationTimeSeconds: t.Add(9 * time.Hour).Unix(),
		Verdict:             judge.VerdictAccepted,
		Problem:             p,
	}
}

func TestRunCycle_GuestGetsUniversalOnly(t *testing.T) {
	o, _ := fixture(t, &fakeJudge{problems: problemsFixture()})

	vm := o.runFor(context.Background(), TriggerStartup, testDay)
	if vm.Error != "" {
		t.Fatalf("unexpected error: %s", vm.Error)
	}
	if vm.Identity != domain.GuestIdentity {
		t.Errorf("expected guest, got %s", vm.Identity)
	}
	if vm.Selection.Universal == nil || vm.Selection.SkillMatched != nil {
		t.Errorf("unexpected selection: %+v", vm.Selection)
	}
}

func TestRunCycle_MarksSolvesAndDerivesStreak(t *testing.T) {
	fj := &fakeJudge{
		problems: problemsFixture(),
		profiles: map[string]domain.UserProfile{"alice": {Handle: "alice", Rating: 1300}},
	}
	o, _ := fixture(t, fj)
	if _, err := o.identities.SetCurrent(context.Background(), "alice"); err != nil {
		t.Fatal(err)
	}

	// First pass resolves the day's selection; feed the judge an accepted
	// submission for whichever problems were picked, then cycle again.
	vm := o.runFor(context.Background(), TriggerStartup, testDay)
	if vm.Selection.SkillMatched == nil || vm.Selection.Universal == nil {
		t.Fatalf("expected both picks for alice: %+v", vm.Selection)
	}
	fj.subs = []judge.Submission{
		acceptedOn(testDay, *vm.Selection.SkillMatched),
		acceptedOn(testDay, *vm.Selection.Universal),
	}

	vm = o.runFor(context.Background(), TriggerTimer, testDay)
	if !vm.SkillMatchedSolved || !vm.UniversalSolved {
		t.Errorf("solves not marked: %+v", vm)
	}
	if vm.SkillMatchedStreak != 1 || vm.UniversalStreak != 1 {
		t.Errorf("streaks not derived: %+v", vm)
	}
	if vm.LastRemoteCheck != testDay {
		t.Errorf("last remote check not recorded: %q", vm.LastRemoteCheck)
	}
}

func TestRunCycle_RedundantInvocationsDoNotDoubleCount(t *testing.T) {
	fj := &fakeJudge{
		problems: problemsFixture(),
		profiles: map[string]domain.UserProfile{"alice": {Handle: "alice", Rating: 1300}},
	}
	o, _ := fixture(t, fj)
	_, _ = o.identities.SetCurrent(context.Background(), "alice")

	vm := o.runFor(context.Background(), TriggerStartup, testDay)
	fj.subs = []judge.Submission{acceptedOn(testDay, *vm.Selection.Universal)}

	// Timer and manual checks land near-simultaneously.
	first := o.runFor(context.Background(), TriggerTimer, testDay)
	second := o.runFor(context.Background(), TriggerManual, testDay)

	if first.UniversalStreak != 1 || second.UniversalStreak != 1 {
		t.Errorf("redundant cycles changed the streak: %d then %d",
			first.UniversalStreak, second.UniversalStreak)
	}
	if second.MaxUniversalStreak != 1 {
		t.Errorf("max drifted under redundant cycles: %d", second.MaxUniversalStreak)
	}
}

func TestRunCycle_ReconcileFailureDegradesWithoutReset(t *testing.T) {
	fj := &fakeJudge{
		problems: problemsFixture(),
		profiles: map[string]domain.UserProfile{"alice": {Handle: "alice", Rating: 1300}},
	}
	o, _ := fixture(t, fj)
	_, _ = o.identities.SetCurrent(context.Background(), "alice")

	// Build up a streak for yesterday and today.
	vm := o.runFor(context.Background(), TriggerStartup, testDay)
	fj.subs = []judge.Submission{acceptedOn(testDay, *vm.Selection.Universal)}
	vm = o.runFor(context.Background(), TriggerTimer, testDay)
	if vm.UniversalStreak != 1 {
		t.Fatalf("setup: expected streak 1, got %d", vm.UniversalStreak)
	}

	// Judge goes dark for submissions only (selection is cached).
	fj.subsErr = domain.ErrRemoteUnavailable
	vm = o.runFor(context.Background(), TriggerManual, testDay)
	if !vm.RemoteDegraded {
		t.Error("expected degraded flag")
	}
	if vm.Error != "" {
		t.Errorf("degraded reconcile is not a selection error: %q", vm.Error)
	}
	if !vm.UniversalSolved || vm.UniversalStreak != 1 {
		t.Errorf("degraded cycle regressed state: %+v", vm)
	}
}

func TestRunCycle_SelectionUnavailable(t *testing.T) {
	fj := &fakeJudge{problemsErr: domain.ErrRemoteUnavailable}
	o, _ := fixture(t, fj)

	vm := o.runFor(context.Background(), TriggerStartup, testDay)
	if vm.Error == "" {
		t.Error("expected error view-model when nothing is cached and fetch fails")
	}
}

func TestRunCycle_EmptyPoolIsNotAnError(t *testing.T) {
	fj := &fakeJudge{problems: nil} // empty catalog
	o, _ := fixture(t, fj)

	vm := o.runFor(context.Background(), TriggerStartup, testDay)
	if vm.Error != "" {
		t.Errorf("empty pool must surface as no-suitable-problem, got error %q", vm.Error)
	}
	if vm.Selection.Universal != nil {
		t.Errorf("expected no pick from empty pool: %+v", vm.Selection)
	}
}
