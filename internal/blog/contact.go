package blog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/domain/contact"
	"github.com/geocoder89/inkwell/internal/notifications"
	"github.com/go-playground/validator/v10"
)

// Contact forwards contact-form submissions to the blog owner's inbox. One Send per message;
// retries, if any, belong to the Mailer.
type Contact struct {
	mailer   notifications.Mailer
	from     string
	to       string
	validate *validator.Validate
	log      *slog.Logger
}

func NewContact(mailer notifications.Mailer, from, to string, log *slog.Logger) *Contact {
	if log == nil {
		log = slog.Default()
	}
	return &Contact{
		mailer:   mailer,
		from:     from,
		to:       to,
		validate: newValidator(),
		log:      log,
	}
}

func (s *Contact) SendContactMessage(ctx context.Context, p authz.Principal, m contact.Message) error {
	const op = "contact.send"

	if dec := authz.Authorize(p, authz.SubmitContact); !dec.Allowed {
		return apperr.Forbidden(op, dec.Reason)
	}

	m.Name = strings.TrimSpace(m.Name)
	m.Email = normalizeEmail(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)

	if err := validateInput(s.validate, op, m); err != nil {
		return err
	}

	err := s.mailer.Send(ctx, notifications.Email{
		From:    s.from,
		To:      s.to,
		ReplyTo: m.Email,
		Subject: contact.Subject,
		Body:    m.Body(),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "contact.send_failed", "err", err)
		return apperr.Transport(op, err)
	}

	s.log.InfoContext(ctx, "contact.sent")
	return nil
}
