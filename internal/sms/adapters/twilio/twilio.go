// Package twilio sends SMS through the Twilio Messages API.
package twilio

import (
	"context"
	"fmt"
	"log/slog"

	twiliogo "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/agencydesk/relay/internal/sms"
)

// Sender creates one REST client per send because credentials vary per admin.
type Sender struct {
	logger *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	return &Sender{logger: log.With(slog.String("service", "twilio"))}
}

func (s *Sender) Send(_ context.Context, req sms.SendRequest) error {
	client := twiliogo.NewRestClientWithParams(twiliogo.ClientParams{
		Username: req.AccountSID,
		Password: req.AuthToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(req.To)
	params.SetFrom(req.From)
	params.SetBody(req.Body)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	if resp.Sid != nil {
		s.logger.Debug("message created", slog.String("sid", *resp.Sid))
	}
	return nil
}
