package postgres

import (
	"context"
	"fmt"

	"job-alert-engine/internal/models"

	"github.com/gocraft/dbr/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// UpsertJob inserts or refreshes a posting in the corpus.
func (s *Store) UpsertJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (
			id, title, description, company, location,
			job_type, skills, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			job_type = EXCLUDED.job_type,
			skills = EXCLUDED.skills,
			is_active = EXCLUDED.is_active,
			created_at = EXCLUDED.created_at
	`

	_, err := s.sess.
		InsertBySql(query,
			job.ID,
			job.Title,
			job.Description,
			job.Company,
			job.Location,
			job.JobType,
			job.Skills,
			job.IsActive,
			job.CreatedAt,
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to upsert job",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return fmt.Errorf("upsert job: %w", err)
	}

	return nil
}

// JobByID returns nil, nil when the job does not exist.
func (s *Store) JobByID(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job

	err := s.sess.
		Select("*").
		From("jobs").
		Where("id = ?", jobID).
		LoadOneContext(ctx, &job)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get job: %w", err)
	}

	return &job, nil
}

// ActiveJobs loads the full open corpus. Every alert run re-reads it so
// profile edits and new postings take effect immediately.
func (s *Store) ActiveJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job

	_, err := s.sess.
		Select("*").
		From("jobs").
		Where("is_active = ?", true).
		LoadContext(ctx, &jobs)

	if err != nil {
		s.logger.Error("failed to get active jobs", zap.Error(err))
		return nil, fmt.Errorf("get active jobs: %w", err)
	}

	s.logger.Debug("active jobs loaded", zap.Int("count", len(jobs)))

	return jobs, nil
}

func (s *Store) JobsByIDs(ctx context.Context, jobIDs []string) ([]models.Job, error) {
	if len(jobIDs) == 0 {
		return []models.Job{}, nil
	}

	var jobs []models.Job

	_, err := s.sess.
		Select("*").
		From("jobs").
		Where("id = ANY(?)", pq.Array(jobIDs)).
		LoadContext(ctx, &jobs)

	if err != nil {
		s.logger.Error("failed to get jobs by IDs",
			zap.Int("count", len(jobIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get jobs by IDs: %w", err)
	}

	return jobs, nil
}

func (s *Store) SetJobActive(ctx context.Context, jobID string, active bool) error {
	_, err := s.sess.
		Update("jobs").
		Set("is_active", active).
		Where("id = ?", jobID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set job active",
			zap.String("job_id", jobID),
			zap.Bool("active", active),
			zap.Error(err),
		)
		return fmt.Errorf("set job active: %w", err)
	}

	return nil
}
