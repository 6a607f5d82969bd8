package postgres

import (
	"context"
	"fmt"
	"time"

	"job-alert-engine/internal/models"

	"github.com/gocraft/dbr/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAlert validates the alert's enums, assigns it an id, and persists it.
func (s *Store) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if !models.IsValidFrequency(alert.Frequency) {
		return fmt.Errorf("invalid frequency %q", alert.Frequency)
	}
	for _, jt := range alert.JobTypes {
		if !models.IsValidJobType(jt) {
			return fmt.Errorf("invalid job type %q", jt)
		}
	}

	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	alert.CreatedAt = time.Now()
	alert.IsActive = true

	_, err := s.sess.
		InsertInto("alerts").
		Columns("id", "user_id", "name", "keywords", "locations", "job_types",
			"frequency", "is_active", "created_at").
		Values(alert.ID, alert.UserID, alert.Name, alert.Keywords, alert.Locations,
			alert.JobTypes, alert.Frequency, alert.IsActive, alert.CreatedAt).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to create alert",
			zap.String("user_id", alert.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("create alert: %w", err)
	}

	s.logger.Info("alert created",
		zap.String("alert_id", alert.ID),
		zap.String("user_id", alert.UserID),
		zap.String("frequency", alert.Frequency),
	)

	return nil
}

// AlertByID returns nil, nil when the alert does not exist.
func (s *Store) AlertByID(ctx context.Context, alertID string) (*models.Alert, error) {
	var alert models.Alert

	err := s.sess.
		Select("*").
		From("alerts").
		Where("id = ?", alertID).
		LoadOneContext(ctx, &alert)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get alert",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get alert: %w", err)
	}

	return &alert, nil
}

func (s *Store) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert

	_, err := s.sess.
		Select("*").
		From("alerts").
		Where("is_active = ?", true).
		OrderBy("created_at").
		LoadContext(ctx, &alerts)

	if err != nil {
		s.logger.Error("failed to get active alerts", zap.Error(err))
		return nil, fmt.Errorf("get active alerts: %w", err)
	}

	return alerts, nil
}

func (s *Store) AlertsByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	var alerts []models.Alert

	_, err := s.sess.
		Select("*").
		From("alerts").
		Where("user_id = ?", userID).
		OrderBy("created_at").
		LoadContext(ctx, &alerts)

	if err != nil {
		s.logger.Error("failed to get user alerts",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get user alerts: %w", err)
	}

	return alerts, nil
}

func (s *Store) SetAlertActive(ctx context.Context, alertID string, active bool) error {
	result, err := s.sess.
		Update("alerts").
		Set("is_active", active).
		Where("id = ?", alertID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set alert active",
			zap.String("alert_id", alertID),
			zap.Bool("active", active),
			zap.Error(err),
		)
		return fmt.Errorf("set alert active: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found")
	}

	s.logger.Info("alert active updated",
		zap.String("alert_id", alertID),
		zap.Bool("active", active),
	)

	return nil
}

func (s *Store) DeleteAlert(ctx context.Context, alertID string) error {
	result, err := s.sess.
		DeleteFrom("alerts").
		Where("id = ?", alertID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete alert",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return fmt.Errorf("delete alert: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found")
	}

	s.logger.Info("alert deleted", zap.String("alert_id", alertID))
	return nil
}

// MarkAlertNotified bumps the bookkeeping counters after a digest went out.
func (s *Store) MarkAlertNotified(ctx context.Context, alertID string, matchesFound int) error {
	_, err := s.sess.
		Update("alerts").
		Set("last_sent", time.Now()).
		IncrBy("matches_found", matchesFound).
		IncrBy("notification_count", 1).
		Where("id = ?", alertID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark alert notified",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return fmt.Errorf("mark alert notified: %w", err)
	}

	return nil
}
