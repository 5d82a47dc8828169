package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"patient-portal-server/internal/config"
)

// SMTPNotifier sends plain-text email through an SMTP relay.
type SMTPNotifier struct {
	client *mail.Client
	from   string
}

// NewSMTPNotifier builds a notifier from the mailer configuration.
func NewSMTPNotifier(cfg config.MailerConfig) (*SMTPNotifier, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}
	return &SMTPNotifier{client: client, from: cfg.From}, nil
}

// Notify sends one email. The caller bounds the context; a timeout counts as
// delivery failure.
func (n *SMTPNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", recipient, err)
	}
	return nil
}
