package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// schema is applied idempotently on startup; real deployments run the same
// statements through their migration tooling.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		email          TEXT NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		skills         TEXT[] NOT NULL DEFAULT '{}',
		saved_keywords TEXT[] NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		id          BIGSERIAL PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		term        TEXT NOT NULL,
		searched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_history_user
		ON search_history (user_id, searched_at DESC)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		company     TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		job_type    TEXT NOT NULL DEFAULT '',
		skills      TEXT[] NOT NULL DEFAULT '{}',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_active ON jobs (is_active)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name               TEXT NOT NULL,
		keywords           TEXT[] NOT NULL DEFAULT '{}',
		locations          TEXT[] NOT NULL DEFAULT '{}',
		job_types          TEXT[] NOT NULL DEFAULT '{}',
		frequency          TEXT NOT NULL DEFAULT 'daily',
		is_active          BOOLEAN NOT NULL DEFAULT TRUE,
		matches_found      INTEGER NOT NULL DEFAULT 0,
		notification_count INTEGER NOT NULL DEFAULT 0,
		last_sent          TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts (is_active)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		job_id     TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'Applied',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_user
		ON applications (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS alert_notified_jobs (
		alert_id    TEXT NOT NULL REFERENCES alerts(id) ON DELETE CASCADE,
		job_id      TEXT NOT NULL,
		notified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (alert_id, job_id)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.sess.ExecContext(ctx, stmt); err != nil {
			s.logger.Error("failed to apply schema statement", zap.Error(err))
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	s.logger.Info("database schema ready")
	return nil
}
