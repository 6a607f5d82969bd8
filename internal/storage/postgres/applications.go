package postgres

import (
	"context"
	"fmt"
	"time"

	"job-alert-engine/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (s *Store) CreateApplication(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.CreatedAt = time.Now()

	_, err := s.sess.
		InsertInto("applications").
		Columns("id", "user_id", "job_id", "status", "created_at").
		Values(app.ID, app.UserID, app.JobID, app.Status, app.CreatedAt).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to create application",
			zap.String("user_id", app.UserID),
			zap.String("job_id", app.JobID),
			zap.Error(err),
		)
		return fmt.Errorf("create application: %w", err)
	}

	s.logger.Info("application created",
		zap.String("application_id", app.ID),
		zap.String("job_id", app.JobID),
	)

	return nil
}

func (s *Store) SetApplicationStatus(ctx context.Context, appID string, status models.ApplicationStatus) error {
	result, err := s.sess.
		Update("applications").
		Set("status", status).
		Where("id = ?", appID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set application status",
			zap.String("application_id", appID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return fmt.Errorf("set application status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("application not found")
	}

	s.logger.Info("application status updated",
		zap.String("application_id", appID),
		zap.String("status", string(status)),
	)

	return nil
}

// HistoricalApplications joins a user's applications with the jobs they were
// for, filtered to the given outcomes. The matcher mines these rows for
// learned keywords and skills.
func (s *Store) HistoricalApplications(ctx context.Context, userID string, statuses []models.ApplicationStatus) ([]models.HistoricalApplication, error) {
	if len(statuses) == 0 {
		return []models.HistoricalApplication{}, nil
	}

	raw := make([]string, 0, len(statuses))
	for _, st := range statuses {
		raw = append(raw, string(st))
	}

	query := `
		SELECT
			a.id AS application_id,
			a.job_id,
			a.status,
			a.created_at AS applied_at,
			j.title AS job_title,
			j.skills AS job_skills
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.user_id = $1
		AND a.status = ANY($2)
		ORDER BY a.created_at DESC
	`

	var apps []models.HistoricalApplication

	_, err := s.sess.
		SelectBySql(query, userID, pq.Array(raw)).
		LoadContext(ctx, &apps)

	if err != nil {
		s.logger.Error("failed to get historical applications",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get historical applications: %w", err)
	}

	s.logger.Debug("historical applications loaded",
		zap.String("user_id", userID),
		zap.Int("count", len(apps)),
	)

	return apps, nil
}
