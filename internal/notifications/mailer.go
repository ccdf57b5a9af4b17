package notifications

import "context"

type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer hands a message to an outbound mail transport.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
