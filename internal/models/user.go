package models

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	Name          string         `db:"name"`
	Skills        pq.StringArray `db:"skills"`
	SavedKeywords pq.StringArray `db:"saved_keywords"`
	CreatedAt     time.Time      `db:"created_at"`

	// Loaded from search_history, most recent first.
	SearchHistory []SearchEntry `db:"-"`
}

type SearchEntry struct {
	Term       string    `db:"term"`
	SearchedAt time.Time `db:"searched_at"`
}
