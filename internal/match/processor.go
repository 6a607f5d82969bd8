package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"job-alert-engine/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// minScore is the aggregate cutoff below which a job is not worth alerting.
	minScore = 10
	// maxMatches caps a single alert's result list.
	maxMatches = 10
	// searchHistoryWindow bounds how many recent searches feed the keyword set.
	searchHistoryWindow = 20
)

var (
	ErrAlertNotFound = errors.New("alert not found or inactive")
	ErrUserNotFound  = errors.New("alert owner not found")
)

// DataSource is the read-only persistence surface the engine scores from.
type DataSource interface {
	AlertByID(ctx context.Context, id string) (*models.Alert, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	ActiveJobs(ctx context.Context) ([]models.Job, error)
	ActiveAlerts(ctx context.Context) ([]models.Alert, error)
	HistoricalApplications(ctx context.Context, userID string, statuses []models.ApplicationStatus) ([]models.HistoricalApplication, error)
}

// AlertReport is the outcome of scoring one alert. Owner rides along so batch
// callers can dispatch notifications without refetching the user.
type AlertReport struct {
	Alert   *models.Alert `json:"alert"`
	Owner   *models.User  `json:"-"`
	Matches []MatchResult `json:"matches"`
}

// AlertRun is one entry of a batch run over all active alerts. Err is set
// when that alert failed; the batch itself keeps going.
type AlertRun struct {
	AlertID string
	Alert   *models.Alert
	Owner   *models.User
	Matches []MatchResult
	Err     error
}

type Processor struct {
	store  DataSource
	logger *zap.Logger
	now    func() time.Time
}

func NewProcessor(store DataSource, logger *zap.Logger) *Processor {
	return &Processor{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ProcessAlert scores the full active corpus against one alert and returns
// the matches ranked best-first.
//
// onlyNew is accepted for API compatibility and ignored: every run evaluates
// the whole corpus so profile edits take effect immediately.
func (p *Processor) ProcessAlert(ctx context.Context, alertID string, onlyNew bool) (*AlertReport, error) {
	_ = onlyNew

	alert, err := p.store.AlertByID(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("load alert: %w", err)
	}
	if alert == nil || !alert.IsActive {
		return nil, ErrAlertNotFound
	}

	// The three reads are independent; profile is always fetched fresh so the
	// latest edits count.
	var (
		user    *models.User
		jobs    []models.Job
		learned LearnedSignals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := p.store.UserByID(gctx, alert.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		j, err := p.store.ActiveJobs(gctx)
		if err != nil {
			return fmt.Errorf("load active jobs: %w", err)
		}
		jobs = j
		return nil
	})
	g.Go(func() error {
		learned = p.learnedSignals(gctx, alert.UserID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	crit := Criteria{
		Keywords:  effectiveKeywords(user, alert, learned),
		Skills:    effectiveSkills(user, learned),
		Locations: alert.Locations,
		JobTypes:  alert.JobTypes,
	}

	now := p.now()
	matches := make([]MatchResult, 0, len(jobs))
	for _, job := range jobs {
		m := ScoreJob(crit, job, now)
		if m.Score < minScore {
			continue
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	p.logger.Debug("alert processed",
		zap.String("alert_id", alert.ID),
		zap.Int("jobs_scored", len(jobs)),
		zap.Int("matches", len(matches)),
	)

	return &AlertReport{Alert: alert, Owner: user, Matches: matches}, nil
}

// ProcessAllActive runs every active alert, isolating per-alert failures so
// one broken alert cannot take down the batch.
func (p *Processor) ProcessAllActive(ctx context.Context) ([]AlertRun, error) {
	alerts, err := p.store.ActiveAlerts(ctx)
	if err != nil {
		p.logger.Error("failed to load active alerts", zap.Error(err))
		return nil, fmt.Errorf("load active alerts: %w", err)
	}

	runs := make([]AlertRun, 0, len(alerts))
	for _, alert := range alerts {
		run := AlertRun{AlertID: alert.ID}

		report, err := p.processAlertSafe(ctx, alert.ID)
		if err != nil {
			p.logger.Error("alert processing failed",
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
			run.Err = err
		} else {
			run.Alert = report.Alert
			run.Owner = report.Owner
			run.Matches = report.Matches
		}

		runs = append(runs, run)
	}

	return runs, nil
}

// processAlertSafe converts a panic while scoring one alert into a recorded
// error.
func (p *Processor) processAlertSafe(ctx context.Context, alertID string) (report *AlertReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic recovered while processing alert",
				zap.String("alert_id", alertID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			report = nil
			err = fmt.Errorf("process alert %s: panic: %v", alertID, r)
		}
	}()

	return p.ProcessAlert(ctx, alertID, false)
}

// learnedSignals fetches and mines past successful applications. The signal
// is an enhancement, not a requirement: any failure degrades to empty sets.
func (p *Processor) learnedSignals(ctx context.Context, userID string) LearnedSignals {
	apps, err := p.store.HistoricalApplications(ctx, userID, models.SuccessfulStatuses())
	if err != nil {
		p.logger.Warn("learned signals unavailable",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return LearnedSignals{}
	}
	return ExtractLearnedSignals(apps)
}

// effectiveKeywords merges the keyword sources in priority order, first
// occurrence winning: saved profile keywords, the alert's own keywords,
// learned keywords, then the most recent search terms. A field-prefixed
// search like "title:react" contributes both "react" and the prefixed form.
func effectiveKeywords(user *models.User, alert *models.Alert, learned LearnedSignals) []string {
	set := newOrderedSet()

	for _, k := range user.SavedKeywords {
		set.add(k)
	}
	for _, k := range alert.Keywords {
		set.add(k)
	}
	for _, k := range learned.Keywords {
		set.add(k)
	}

	history := user.SearchHistory
	if len(history) > searchHistoryWindow {
		history = history[:searchHistoryWindow]
	}
	for _, entry := range history {
		term := Normalize(entry.Term)
		if field, bare, ok := strings.Cut(term, ":"); ok && field != "" && bare != "" {
			set.add(bare)
		}
		set.add(term)
	}

	return set.values()
}

// effectiveSkills is the profile skill set extended with learned skills.
func effectiveSkills(user *models.User, learned LearnedSignals) []string {
	set := newOrderedSet()
	for _, s := range user.Skills {
		set.add(s)
	}
	for _, s := range learned.Skills {
		set.add(s)
	}
	return set.values()
}
