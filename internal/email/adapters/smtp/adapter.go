// Package smtp sends email through a plain SMTP relay.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	mail "github.com/wneessen/go-mail"

	"github.com/agencydesk/relay/internal/config"
	"github.com/agencydesk/relay/internal/email"
)

type Adapter struct {
	cfg    config.SMTPConfig
	from   string
	logger *slog.Logger
}

func New(log *slog.Logger, cfg config.SMTPConfig, from string) *Adapter {
	return &Adapter{
		cfg:    cfg,
		from:   from,
		logger: log.With(slog.String("adapter", "smtp")),
	}
}

func (a *Adapter) Send(ctx context.Context, msg email.Outbound) (string, error) {
	m := mail.NewMsg()
	if err := m.From(a.from); err != nil {
		return "", fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return "", fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	if msg.Text != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		if msg.HTML != "" {
			m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
		}
	} else {
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}
	m.SetMessageID()

	opts := []mail.Option{
		mail.WithPort(a.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if a.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(a.cfg.Username),
			mail.WithPassword(a.cfg.Password),
		)
	}

	client, err := mail.NewClient(a.cfg.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return m.GetMessageID(), nil
}
