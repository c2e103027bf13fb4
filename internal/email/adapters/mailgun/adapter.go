// Package mailgun sends email through the Mailgun HTTP API.
package mailgun

import (
	"context"
	"fmt"
	"log/slog"

	mg "github.com/mailgun/mailgun-go/v5"

	"github.com/agencydesk/relay/internal/config"
	"github.com/agencydesk/relay/internal/email"
)

type Adapter struct {
	client *mg.Client
	domain string
	from   string
	logger *slog.Logger
}

func New(log *slog.Logger, cfg config.MailgunConfig, from string) *Adapter {
	client := mg.NewMailgun(cfg.APIKey)
	if cfg.Region == "eu" {
		client.SetAPIBase(mg.APIBaseEU)
	}
	return &Adapter{
		client: client,
		domain: cfg.Domain,
		from:   from,
		logger: log.With(slog.String("adapter", "mailgun")),
	}
}

func (a *Adapter) Send(ctx context.Context, msg email.Outbound) (string, error) {
	m := mg.NewMessage(a.domain, a.from, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		m.SetHTML(msg.HTML)
	}

	resp, err := a.client.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("mailgun send: %w", err)
	}
	a.logger.Debug("message accepted", slog.String("id", resp.ID))
	return resp.ID, nil
}
