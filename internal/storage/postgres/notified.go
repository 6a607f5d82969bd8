package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// FilterUnnotified returns the subset of jobIDs not yet sent for this alert,
// computed as a set difference inside PostgreSQL.
func (s *Store) FilterUnnotified(ctx context.Context, alertID string, jobIDs []string) ([]string, error) {
	if len(jobIDs) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT unnest($1::text[]) AS id
		EXCEPT
		SELECT job_id FROM alert_notified_jobs WHERE alert_id = $2
	`

	var unnotified []string

	rows, err := s.sess.
		SelectBySql(query, pq.Array(jobIDs), alertID).
		Rows()

	if err != nil {
		s.logger.Error("failed to filter unnotified jobs",
			zap.String("alert_id", alertID),
			zap.Int("total_jobs", len(jobIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("filter unnotified jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Error("failed to scan job id",
				zap.String("alert_id", alertID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("scan job id: %w", err)
		}
		unnotified = append(unnotified, id)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("failed during rows iteration",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	s.logger.Debug("unnotified jobs",
		zap.String("alert_id", alertID),
		zap.Int("total", len(jobIDs)),
		zap.Int("unnotified", len(unnotified)),
	)

	return unnotified, nil
}

func (s *Store) MarkNotified(ctx context.Context, alertID string, jobIDs []string) error {
	query := `
		INSERT INTO alert_notified_jobs (alert_id, job_id, notified_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (alert_id, job_id) DO NOTHING
	`

	for _, jobID := range jobIDs {
		_, err := s.sess.
			InsertBySql(query, alertID, jobID).
			ExecContext(ctx)

		if err != nil {
			s.logger.Error("failed to mark job notified",
				zap.String("alert_id", alertID),
				zap.String("job_id", jobID),
				zap.Error(err),
			)
			return fmt.Errorf("mark job notified: %w", err)
		}
	}

	return nil
}

func (s *Store) CleanOldNotified(ctx context.Context, daysOld int) (int64, error) {
	result, err := s.sess.
		DeleteFrom("alert_notified_jobs").
		Where("notified_at < NOW() - INTERVAL '? days'", daysOld).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to clean old notified jobs",
			zap.Int("days_old", daysOld),
			zap.Error(err),
		)
		return 0, fmt.Errorf("clean old notified jobs: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("old notified jobs cleaned",
		zap.Int("days_old", daysOld),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}
