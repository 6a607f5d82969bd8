package redis

import (
	"context"
	"time"
)

const (
	MailCounterTTL = 1 * time.Hour
	LastRunTTL     = 48 * time.Hour
)

func MailCounterKey() string {
	return "mail:sent:hourly"
}

func LastRunKey() string {
	return "alerts:last_run"
}

// IncrementMailCounter bumps the hourly outbound-mail counter and returns the
// new count; the dispatcher compares it against the configured budget.
func (c *Cache) IncrementMailCounter(ctx context.Context) (int64, error) {
	return c.IncrementWithExpiry(ctx, MailCounterKey(), MailCounterTTL)
}

func (c *Cache) MailCount(ctx context.Context) (int64, error) {
	return c.GetInt(ctx, MailCounterKey())
}

// SetLastRun records a human-readable summary of the latest dispatch cycle.
func (c *Cache) SetLastRun(ctx context.Context, summary string) error {
	return c.SetString(ctx, LastRunKey(), summary, LastRunTTL)
}

func (c *Cache) LastRun(ctx context.Context) (string, error) {
	return c.GetString(ctx, LastRunKey())
}
