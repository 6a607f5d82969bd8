package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ApplicationStatus values mirror the application_status column in PostgreSQL.
type ApplicationStatus string

const (
	StatusApplied  ApplicationStatus = "Applied"
	StatusReviewed ApplicationStatus = "Reviewed"
	StatusAccepted ApplicationStatus = "Accepted"
	StatusRejected ApplicationStatus = "Rejected"
)

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case StatusApplied, StatusReviewed, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsSuccessful reports whether the application made it past screening.
func (s ApplicationStatus) IsSuccessful() bool {
	return s == StatusAccepted || s == StatusReviewed
}

// SuccessfulStatuses is the outcome filter used when mining past applications
// for preference signals.
func SuccessfulStatuses() []ApplicationStatus {
	return []ApplicationStatus{StatusAccepted, StatusReviewed}
}

type Application struct {
	ID        string            `db:"id"`
	UserID    string            `db:"user_id"`
	JobID     string            `db:"job_id"`
	Status    ApplicationStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
}

// HistoricalApplication is an application joined with the job it was for,
// flattened to one row.
type HistoricalApplication struct {
	ApplicationID string            `db:"application_id"`
	JobID         string            `db:"job_id"`
	Status        ApplicationStatus `db:"status"`
	JobTitle      string            `db:"job_title"`
	JobSkills     pq.StringArray    `db:"job_skills"`
	AppliedAt     time.Time         `db:"applied_at"`
}
