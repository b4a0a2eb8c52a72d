package services

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"github.com/yukikurage/taker-api/internal/config"
)

// Mailer sends account notifications.
type Mailer interface {
	SendPasswordChanged(ctx context.Context, to, fullName string) error
}

// NoopMailer is used when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) SendPasswordChanged(context.Context, string, string) error { return nil }

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewMailer returns an SMTPMailer when SMTP is configured and a NoopMailer otherwise.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if !cfg.MailEnabled() {
		return NoopMailer{}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.MailFrom}, nil
}

func (m *SMTPMailer) SendPasswordChanged(ctx context.Context, to, fullName string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Your Taker password was changed")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello %s,\n\nThe password for your Taker account was just reset.\n\n"+
			"If you did not do this, contact your administrator right away.\n",
		fullName,
	))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
