package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
)

type Job struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Company     string         `db:"company" json:"company"`
	Location    string         `db:"location" json:"location"`
	JobType     string         `db:"job_type" json:"jobType"`
	Skills      pq.StringArray `db:"skills" json:"skills"`
	IsActive    bool           `db:"is_active" json:"isActive"`
	CreatedAt   *time.Time     `db:"created_at" json:"createdAt,omitempty"`
}

func JobTypeOptions() []string {
	return []string{
		JobTypeFullTime,
		JobTypePartTime,
		JobTypeContract,
		JobTypeInternship,
	}
}

func IsValidJobType(t string) bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}
