package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"job-alert-engine/internal/config"
	"job-alert-engine/internal/match"
	"job-alert-engine/internal/models"
	"job-alert-engine/internal/notify"

	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockEngine struct {
	processAllActive func(ctx context.Context) ([]match.AlertRun, error)
}

func (m *mockEngine) ProcessAllActive(ctx context.Context) ([]match.AlertRun, error) {
	return m.processAllActive(ctx)
}

type mockStore struct {
	filterUnnotified  func(ctx context.Context, alertID string, jobIDs []string) ([]string, error)
	markNotified      func(ctx context.Context, alertID string, jobIDs []string) error
	markAlertNotified func(ctx context.Context, alertID string, matchesFound int) error
	cleanOldNotified  func(ctx context.Context, daysOld int) (int64, error)
}

func (m *mockStore) FilterUnnotified(ctx context.Context, alertID string, jobIDs []string) ([]string, error) {
	if m.filterUnnotified != nil {
		return m.filterUnnotified(ctx, alertID, jobIDs)
	}
	return jobIDs, nil
}

func (m *mockStore) MarkNotified(ctx context.Context, alertID string, jobIDs []string) error {
	if m.markNotified != nil {
		return m.markNotified(ctx, alertID, jobIDs)
	}
	return nil
}

func (m *mockStore) MarkAlertNotified(ctx context.Context, alertID string, matchesFound int) error {
	if m.markAlertNotified != nil {
		return m.markAlertNotified(ctx, alertID, matchesFound)
	}
	return nil
}

func (m *mockStore) CleanOldNotified(ctx context.Context, daysOld int) (int64, error) {
	if m.cleanOldNotified != nil {
		return m.cleanOldNotified(ctx, daysOld)
	}
	return 0, nil
}

type mockCache struct {
	incrementMailCounter func(ctx context.Context) (int64, error)
	setLastRun           func(ctx context.Context, summary string) error
}

func (m *mockCache) IncrementMailCounter(ctx context.Context) (int64, error) {
	if m.incrementMailCounter != nil {
		return m.incrementMailCounter(ctx)
	}
	return 1, nil
}

func (m *mockCache) SetLastRun(ctx context.Context, summary string) error {
	if m.setLastRun != nil {
		return m.setLastRun(ctx, summary)
	}
	return nil
}

type recordingNotifier struct {
	digests []notify.Digest
	err     error
}

func (n *recordingNotifier) SendDigest(ctx context.Context, d notify.Digest) error {
	n.digests = append(n.digests, d)
	return n.err
}

func testConfig() *config.Config {
	return &config.Config{
		CheckInterval:    time.Hour,
		MaxJobsPerDigest: 2,
		MailHourlyBudget: 100,
		LogLevel:         "info",
	}
}

func newTestChecker(engine Engine, store DedupeStore, cache RunCache, notifier notify.Notifier) *Checker {
	c := New(engine, store, cache, notifier, testConfig(), zap.NewNop())
	c.now = func() time.Time { return testNow }
	return c
}

func matchRun(alertID string, lastSent *time.Time, jobIDs ...string) match.AlertRun {
	matches := make([]match.MatchResult, 0, len(jobIDs))
	for i, id := range jobIDs {
		matches = append(matches, match.MatchResult{
			Job:     models.Job{ID: id, Title: "Job " + id},
			Score:   90 - i,
			Reasons: []string{"Matches your keywords"},
		})
	}
	return match.AlertRun{
		AlertID: alertID,
		Alert: &models.Alert{
			ID:        alertID,
			Name:      "My alert",
			Frequency: models.FrequencyDaily,
			IsActive:  true,
			LastSent:  lastSent,
		},
		Owner:   &models.User{ID: "u1", Email: "ana@example.com", Name: "Ana"},
		Matches: matches,
	}
}

func TestDispatch_SendsNewMatchesAndBumpsCounters(t *testing.T) {
	var marked []string
	var counted int

	store := &mockStore{
		filterUnnotified: func(ctx context.Context, alertID string, jobIDs []string) ([]string, error) {
			return []string{"j1", "j3"}, nil // j2 already sent
		},
		markNotified: func(ctx context.Context, alertID string, jobIDs []string) error {
			marked = jobIDs
			return nil
		},
		markAlertNotified: func(ctx context.Context, alertID string, matchesFound int) error {
			counted = matchesFound
			return nil
		},
	}
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, store, &mockCache{}, notifier)

	run := matchRun("a1", nil, "j1", "j2", "j3")
	if got := c.dispatch(context.Background(), c.logger, run); got != dispatched {
		t.Fatalf("dispatch = %v, want dispatched", got)
	}

	if len(notifier.digests) != 1 {
		t.Fatalf("digests sent = %d, want 1", len(notifier.digests))
	}
	d := notifier.digests[0]
	if d.To != "ana@example.com" || d.AlertName != "My alert" {
		t.Errorf("digest addressed wrong: %+v", d)
	}
	if len(d.Matches) != 2 {
		t.Errorf("digest matches = %d, want 2 (only new jobs)", len(d.Matches))
	}
	for _, m := range d.Matches {
		if m.Job.ID == "j2" {
			t.Errorf("already-notified job j2 included in digest")
		}
	}

	if len(marked) != 2 {
		t.Errorf("marked notified = %v, want the 2 new ids", marked)
	}
	if counted != 3 {
		t.Errorf("matches_found increment = %d, want 3 (all matches)", counted)
	}
}

func TestDispatch_CapsDigestSize(t *testing.T) {
	var marked []string
	store := &mockStore{
		markNotified: func(ctx context.Context, alertID string, jobIDs []string) error {
			marked = jobIDs
			return nil
		},
	}
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, store, &mockCache{}, notifier)

	run := matchRun("a1", nil, "j1", "j2", "j3", "j4", "j5")
	if got := c.dispatch(context.Background(), c.logger, run); got != dispatched {
		t.Fatalf("dispatch = %v, want dispatched", got)
	}

	if got := len(notifier.digests[0].Matches); got != c.config.MaxJobsPerDigest {
		t.Errorf("digest matches = %d, want cap %d", got, c.config.MaxJobsPerDigest)
	}
	// Cap keeps the best-scored matches.
	if notifier.digests[0].Matches[0].Job.ID != "j1" {
		t.Errorf("digest dropped the top match: %+v", notifier.digests[0].Matches)
	}

	// Only mailed jobs are marked notified; the matches cut by the cap must
	// stay eligible for the next cycle instead of being suppressed unsent.
	mailed := make(map[string]bool)
	for _, m := range notifier.digests[0].Matches {
		mailed[m.Job.ID] = true
	}
	if len(marked) != len(mailed) {
		t.Fatalf("marked %d jobs notified, mailed %d: %v", len(marked), len(mailed), marked)
	}
	for _, id := range marked {
		if !mailed[id] {
			t.Errorf("job %s marked notified but never mailed", id)
		}
	}
}

func TestDispatch_SkipsWhenNotDue(t *testing.T) {
	sent := testNow.Add(-2 * time.Hour) // daily alert, sent 2h ago
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, &mockStore{}, &mockCache{}, notifier)

	run := matchRun("a1", &sent, "j1")
	if got := c.dispatch(context.Background(), c.logger, run); got != skipped {
		t.Fatalf("dispatch = %v, want skipped", got)
	}
	if len(notifier.digests) != 0 {
		t.Errorf("digest sent for an alert that is not due")
	}
}

func TestDispatch_WeeklyWindow(t *testing.T) {
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, &mockStore{}, &mockCache{}, notifier)

	twoDays := testNow.Add(-2 * 24 * time.Hour)
	eightDays := testNow.Add(-8 * 24 * time.Hour)

	run := matchRun("a1", &twoDays, "j1")
	run.Alert.Frequency = models.FrequencyWeekly
	if got := c.dispatch(context.Background(), c.logger, run); got != skipped {
		t.Errorf("weekly alert sent 2d ago: dispatch = %v, want skipped", got)
	}

	run = matchRun("a1", &eightDays, "j1")
	run.Alert.Frequency = models.FrequencyWeekly
	if got := c.dispatch(context.Background(), c.logger, run); got != dispatched {
		t.Errorf("weekly alert sent 8d ago: dispatch = %v, want dispatched", got)
	}
}

func TestDispatch_SkipsWhenNothingNew(t *testing.T) {
	store := &mockStore{
		filterUnnotified: func(ctx context.Context, alertID string, jobIDs []string) ([]string, error) {
			return nil, nil
		},
	}
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, store, &mockCache{}, notifier)

	run := matchRun("a1", nil, "j1", "j2")
	if got := c.dispatch(context.Background(), c.logger, run); got != skipped {
		t.Fatalf("dispatch = %v, want skipped", got)
	}
	if len(notifier.digests) != 0 {
		t.Errorf("digest sent with nothing new")
	}
}

func TestDispatch_MailBudgetExhausted(t *testing.T) {
	cache := &mockCache{
		incrementMailCounter: func(ctx context.Context) (int64, error) {
			return int64(testConfig().MailHourlyBudget) + 1, nil
		},
	}
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, &mockStore{}, cache, notifier)

	run := matchRun("a1", nil, "j1")
	if got := c.dispatch(context.Background(), c.logger, run); got != skipped {
		t.Fatalf("dispatch = %v, want skipped", got)
	}
	if len(notifier.digests) != 0 {
		t.Errorf("digest sent over mail budget")
	}
}

func TestDispatch_CounterOutageDegradesToSending(t *testing.T) {
	cache := &mockCache{
		incrementMailCounter: func(ctx context.Context) (int64, error) {
			return 0, errors.New("redis down")
		},
	}
	notifier := &recordingNotifier{}
	c := newTestChecker(&mockEngine{}, &mockStore{}, cache, notifier)

	run := matchRun("a1", nil, "j1")
	if got := c.dispatch(context.Background(), c.logger, run); got != dispatched {
		t.Fatalf("dispatch = %v, want dispatched (counter outage must not block)", got)
	}
}

func TestDispatch_NotifierFailure(t *testing.T) {
	var counterBumped bool
	store := &mockStore{
		markAlertNotified: func(ctx context.Context, alertID string, matchesFound int) error {
			counterBumped = true
			return nil
		},
	}
	notifier := &recordingNotifier{err: errors.New("smtp unreachable")}
	c := newTestChecker(&mockEngine{}, store, &mockCache{}, notifier)

	run := matchRun("a1", nil, "j1")
	if got := c.dispatch(context.Background(), c.logger, run); got != failed {
		t.Fatalf("dispatch = %v, want failed", got)
	}
	if counterBumped {
		t.Errorf("alert counters bumped although the send failed")
	}
}

func TestRunCycle_RecordsSummary(t *testing.T) {
	runs := []match.AlertRun{
		matchRun("a1", nil, "j1"),
		{AlertID: "a2", Err: errors.New("boom")},
		matchRun("a3", nil), // no matches
	}

	var summary string
	cache := &mockCache{
		setLastRun: func(ctx context.Context, s string) error {
			summary = s
			return nil
		},
	}
	engine := &mockEngine{
		processAllActive: func(ctx context.Context) ([]match.AlertRun, error) {
			return runs, nil
		},
	}
	c := newTestChecker(engine, &mockStore{}, cache, &recordingNotifier{})

	c.runCycle(context.Background())

	want := "runs=3 sent=1 skipped=1 failed=1"
	if summary != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}
}

func TestRunCycle_PrunesNotifiedSet(t *testing.T) {
	var prunedDays int
	store := &mockStore{
		cleanOldNotified: func(ctx context.Context, daysOld int) (int64, error) {
			prunedDays = daysOld
			return 4, nil
		},
	}
	engine := &mockEngine{
		processAllActive: func(ctx context.Context) ([]match.AlertRun, error) {
			return nil, nil
		},
	}
	c := newTestChecker(engine, store, &mockCache{}, &recordingNotifier{})

	c.runCycle(context.Background())

	if prunedDays != notifiedRetentionDays {
		t.Errorf("pruned with retention %d days, want %d", prunedDays, notifiedRetentionDays)
	}
}
