package notify

import (
	"context"

	"job-alert-engine/internal/match"
)

// Digest is one outbound alert notification: the new matches for a single
// alert, addressed to its owner.
type Digest struct {
	To        string
	Name      string
	AlertName string
	Matches   []match.MatchResult
}

// Notifier delivers a digest. Implementations must be safe for use from the
// scheduler goroutine.
type Notifier interface {
	SendDigest(ctx context.Context, d Digest) error
}
