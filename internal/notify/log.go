package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes digests to the log instead of sending mail. Used when
// no SMTP host is configured, e.g. in local development.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendDigest(ctx context.Context, d Digest) error {
	subject, body := FormatDigest(d)

	n.logger.Info("digest (log notifier)",
		zap.String("to", d.To),
		zap.String("subject", subject),
		zap.Int("matches", len(d.Matches)),
	)
	n.logger.Debug("digest body", zap.String("body", body))

	return nil
}
