package scheduler

import (
	"context"
	"fmt"
	"time"

	"job-alert-engine/internal/config"
	"job-alert-engine/internal/match"
	"job-alert-engine/internal/models"
	"job-alert-engine/internal/notify"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Engine scores all active alerts. Satisfied by *match.Processor.
type Engine interface {
	ProcessAllActive(ctx context.Context) ([]match.AlertRun, error)
}

// DedupeStore tracks which jobs were already sent per alert and keeps the
// alert counters. Satisfied by *postgres.Store.
type DedupeStore interface {
	FilterUnnotified(ctx context.Context, alertID string, jobIDs []string) ([]string, error)
	MarkNotified(ctx context.Context, alertID string, jobIDs []string) error
	MarkAlertNotified(ctx context.Context, alertID string, matchesFound int) error
	CleanOldNotified(ctx context.Context, daysOld int) (int64, error)
}

// notifiedRetentionDays bounds how long the per-alert dedupe rows live.
// Postings older than this are long inactive, so re-notifying cannot happen.
const notifiedRetentionDays = 90

// RunCache holds the outbound-mail counter and the last-cycle summary.
// Satisfied by *redis.Cache.
type RunCache interface {
	IncrementMailCounter(ctx context.Context) (int64, error)
	SetLastRun(ctx context.Context, summary string) error
}

// Checker runs the alert-matching cycle on a schedule and dispatches digests
// for alerts with new matches.
type Checker struct {
	engine   Engine
	store    DedupeStore
	cache    RunCache
	notifier notify.Notifier
	config   *config.Config
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

func New(
	engine Engine,
	store DedupeStore,
	cache RunCache,
	notifier notify.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *Checker {
	return &Checker{
		engine:   engine,
		store:    store,
		cache:    cache,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start registers the cron job and kicks off one cycle immediately so a
// restart does not wait a full interval.
func (c *Checker) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", c.config.CheckInterval)

	_, err := c.cron.AddFunc(spec, func() {
		c.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	c.cron.Start()

	c.logger.Info("alert checker started",
		zap.Duration("interval", c.config.CheckInterval),
	)

	go c.runCycle(ctx)

	return nil
}

func (c *Checker) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.logger.Info("alert checker stopped")
}

// cycleStats summarizes one dispatch cycle.
type cycleStats struct {
	runs    int
	sent    int
	skipped int
	failed  int
}

func (s cycleStats) String() string {
	return fmt.Sprintf("runs=%d sent=%d skipped=%d failed=%d", s.runs, s.sent, s.skipped, s.failed)
}

func (c *Checker) runCycle(ctx context.Context) {
	runID := uuid.NewString()[:8]
	log := c.logger.With(zap.String("run_id", runID))

	log.Info("starting alert cycle")

	cycleCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	runs, err := c.engine.ProcessAllActive(cycleCtx)
	if err != nil {
		log.Error("alert cycle aborted", zap.Error(err))
		return
	}

	stats := cycleStats{runs: len(runs)}

	for _, run := range runs {
		switch c.dispatch(cycleCtx, log, run) {
		case dispatched:
			stats.sent++
		case skipped:
			stats.skipped++
		case failed:
			stats.failed++
		}
	}

	summary := stats.String()
	log.Info("alert cycle finished",
		zap.Int("runs", stats.runs),
		zap.Int("sent", stats.sent),
		zap.Int("skipped", stats.skipped),
		zap.Int("failed", stats.failed),
	)

	if err := c.cache.SetLastRun(cycleCtx, summary); err != nil {
		log.Warn("failed to record cycle summary", zap.Error(err))
	}

	if _, err := c.store.CleanOldNotified(cycleCtx, notifiedRetentionDays); err != nil {
		log.Warn("failed to prune notified jobs", zap.Error(err))
	}
}

type dispatchOutcome int

const (
	skipped dispatchOutcome = iota
	dispatched
	failed
)

// dispatch decides whether one alert run warrants a digest and sends it.
func (c *Checker) dispatch(ctx context.Context, log *zap.Logger, run match.AlertRun) dispatchOutcome {
	log = log.With(zap.String("alert_id", run.AlertID))

	if run.Err != nil {
		// Already logged by the processor.
		return failed
	}

	if len(run.Matches) == 0 {
		log.Debug("no matches, skipping")
		return skipped
	}

	if !c.isDue(run.Alert) {
		log.Debug("alert not due yet",
			zap.String("frequency", run.Alert.Frequency),
			zap.Timep("last_sent", run.Alert.LastSent),
		)
		return skipped
	}

	if !c.withinMailBudget(ctx, log) {
		return skipped
	}

	jobIDs := make([]string, 0, len(run.Matches))
	for _, m := range run.Matches {
		jobIDs = append(jobIDs, m.Job.ID)
	}

	newIDs, err := c.store.FilterUnnotified(ctx, run.AlertID, jobIDs)
	if err != nil {
		log.Error("failed to diff notified jobs", zap.Error(err))
		return failed
	}

	if len(newIDs) == 0 {
		log.Debug("all matches already notified, skipping")
		return skipped
	}

	newSet := make(map[string]bool, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = true
	}

	var newMatches []match.MatchResult
	for _, m := range run.Matches {
		if newSet[m.Job.ID] {
			newMatches = append(newMatches, m)
		}
	}
	if len(newMatches) > c.config.MaxJobsPerDigest {
		newMatches = newMatches[:c.config.MaxJobsPerDigest]
	}

	// Only the jobs that actually go out get marked; matches cut by the
	// digest cap stay unnotified and flow into the next due cycle.
	mailedIDs := make([]string, 0, len(newMatches))
	for _, m := range newMatches {
		mailedIDs = append(mailedIDs, m.Job.ID)
	}

	digest := notify.Digest{
		To:        run.Owner.Email,
		Name:      run.Owner.Name,
		AlertName: run.Alert.Name,
		Matches:   newMatches,
	}

	if err := c.notifier.SendDigest(ctx, digest); err != nil {
		log.Error("failed to send digest", zap.Error(err))
		return failed
	}

	// Bookkeeping failures after a successful send are logged, never fatal:
	// the mail is already out.
	if err := c.store.MarkNotified(ctx, run.AlertID, mailedIDs); err != nil {
		log.Error("failed to mark jobs notified", zap.Error(err))
	}
	if err := c.store.MarkAlertNotified(ctx, run.AlertID, len(run.Matches)); err != nil {
		log.Error("failed to update alert counters", zap.Error(err))
	}

	log.Info("digest dispatched",
		zap.String("to", run.Owner.Email),
		zap.Int("new_matches", len(newMatches)),
		zap.Int("total_matches", len(run.Matches)),
	)

	return dispatched
}

// isDue checks the alert's frequency window against its last send. Alerts
// that never sent are due immediately.
func (c *Checker) isDue(alert *models.Alert) bool {
	if alert.LastSent == nil {
		return true
	}

	var window time.Duration
	switch alert.Frequency {
	case models.FrequencyWeekly:
		window = 7 * 24 * time.Hour
	default:
		window = 24 * time.Hour
	}

	return c.now().Sub(*alert.LastSent) >= window
}

// withinMailBudget enforces the hourly outbound cap. An unreachable counter
// degrades to sending rather than silencing all alerts.
func (c *Checker) withinMailBudget(ctx context.Context, log *zap.Logger) bool {
	count, err := c.cache.IncrementMailCounter(ctx)
	if err != nil {
		log.Warn("mail counter unavailable, sending anyway", zap.Error(err))
		return true
	}

	if count > int64(c.config.MailHourlyBudget) {
		log.Warn("hourly mail budget exhausted, skipping send",
			zap.Int64("count", count),
			zap.Int("budget", c.config.MailHourlyBudget),
		)
		return false
	}

	return true
}
