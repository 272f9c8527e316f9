package notify

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/slotwatch/slotwatch/internal/config"
)

// Email delivers messages as plain-text mail through an SMTP relay. Urgent
// messages are flagged with a high importance header so capable clients
// surface them.
type Email struct {
	cfg    config.EmailSettings
	client *mail.Client
}

// NewEmail builds the SMTP client up front so misconfiguration surfaces at
// startup rather than on the first delivery.
func NewEmail(cfg config.EmailSettings) (*Email, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTP.Port),
	}
	if cfg.SMTP.StartTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.SMTP.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTP.User),
			mail.WithPassword(cfg.SMTP.Password),
		)
	}
	if d := cfg.SMTP.Timeout.Duration(); d > 0 {
		opts = append(opts, mail.WithTimeout(d))
	}

	client, err := mail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Email{cfg: cfg, client: client}, nil
}

func (e *Email) SendNormal(ctx context.Context, title, message string) error {
	return e.send(ctx, title, message, false)
}

func (e *Email) SendUrgent(ctx context.Context, title, message string) error {
	return e.send(ctx, title, message, true)
}

func (e *Email) send(ctx context.Context, title, message string, urgent bool) error {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(e.cfg.To...); err != nil {
		return fmt.Errorf("to addresses: %w", err)
	}
	msg.Subject(e.subject(title))
	if urgent {
		msg.SetImportance(mail.ImportanceUrgent)
	}
	msg.SetBodyString(mail.TypeTextPlain, message)

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// subject prefixes the configured subject, if any, to the message title.
func (e *Email) subject(title string) string {
	if e.cfg.Subject == "" {
		return title
	}
	return e.cfg.Subject + ": " + title
}

// compile-time check that Email implements Sink
var _ Sink = (*Email)(nil)
