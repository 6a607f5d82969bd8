package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPNotifier sends digests as plain-text mail through a single SMTP host.
// Auth is optional; templating, retries, and bounce handling are left to the
// mail infrastructure.
type SMTPNotifier struct {
	addr   string // host:port
	from   string
	auth   smtp.Auth
	logger *zap.Logger
}

func NewSMTPNotifier(addr, from, username, password string, logger *zap.Logger) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPNotifier{
		addr:   addr,
		from:   from,
		auth:   auth,
		logger: logger,
	}
}

func (n *SMTPNotifier) SendDigest(ctx context.Context, d Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := FormatDigest(d)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", n.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", d.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{d.To}, []byte(msg.String())); err != nil {
		n.logger.Error("failed to send digest",
			zap.String("to", d.To),
			zap.String("alert_name", d.AlertName),
			zap.Error(err),
		)
		return fmt.Errorf("send digest: %w", err)
	}

	n.logger.Info("digest sent",
		zap.String("to", d.To),
		zap.String("alert_name", d.AlertName),
		zap.Int("matches", len(d.Matches)),
	)

	return nil
}
