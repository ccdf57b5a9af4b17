package notifications

import (
	"context"
	"log/slog"
)

// LogMailer is used when no SMTP host is configured. It records the envelope, not the body.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.log.InfoContext(ctx, "notification.email",
		"from", email.From,
		"to", email.To,
		"reply_to", email.ReplyTo,
		"subject", email.Subject,
		"body_bytes", len(email.Body),
	)
	return nil
}
