package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

type Alert struct {
	ID                string         `db:"id" json:"id"`
	UserID            string         `db:"user_id" json:"userId"`
	Name              string         `db:"name" json:"name"`
	Keywords          pq.StringArray `db:"keywords" json:"keywords"`
	Locations         pq.StringArray `db:"locations" json:"locations"`
	JobTypes          pq.StringArray `db:"job_types" json:"jobTypes"`
	Frequency         string         `db:"frequency" json:"frequency"`
	IsActive          bool           `db:"is_active" json:"isActive"`
	MatchesFound      int            `db:"matches_found" json:"matchesFound"`
	NotificationCount int            `db:"notification_count" json:"notificationCount"`
	LastSent          *time.Time     `db:"last_sent" json:"lastSent,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
}

func FrequencyOptions() []string {
	return []string{FrequencyDaily, FrequencyWeekly}
}

func IsValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}
