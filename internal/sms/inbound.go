package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/phone"
	"github.com/agencydesk/relay/internal/profiles"
)

// InboundProcessor folds provider webhooks into conversations. It never
// returns an error: the webhook layer acks the provider regardless, so every
// failure here is logged and swallowed.
type InboundProcessor struct {
	queries       *sqlc.Queries
	conversations Conversations
	directory     Directory
	logger        *slog.Logger
}

func NewInboundProcessor(log *slog.Logger, queries *sqlc.Queries, conversations Conversations, directory Directory) *InboundProcessor {
	return &InboundProcessor{
		queries:       queries,
		conversations: conversations,
		directory:     directory,
		logger:        log.With(slog.String("service", "sms_inbound")),
	}
}

// HandleInbound matches the sender's number to a client and appends the text
// to that client's conversation. Unmatched messages are stored for admin
// triage and dropped.
func (p *InboundProcessor) HandleInbound(ctx context.Context, from, to, body string) {
	if from == "" || body == "" {
		p.logger.Warn("inbound sms missing from or body, dropped")
		return
	}

	client, err := p.directory.FindClientByPhone(ctx, from)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			p.logger.Warn("inbound sms from unknown number",
				slog.String("from", from))
		} else {
			p.logger.Error("inbound sms client lookup failed",
				slog.String("from", from),
				slog.String("error", err.Error()))
		}
		// Held either way so the text is not lost.
		if err := p.queries.CreateInboundFallback(ctx, sqlc.CreateInboundFallbackParams{
			FromNumber: from,
			ToNumber:   to,
			Body:       body,
		}); err != nil {
			p.logger.Error("inbound fallback write failed",
				slog.String("error", err.Error()))
		}
		return
	}

	conv, err := p.conversations.GetOrCreateSystem(ctx, client.ID)
	if err != nil {
		p.logger.Error("inbound sms conversation lookup failed",
			slog.String("client_id", client.ID),
			slog.String("error", err.Error()))
		return
	}

	if _, err := p.conversations.AppendMessage(ctx, conversation.AppendInput{
		ConversationID: conv.ID,
		SenderID:       client.ID,
		Type:           conversation.TypeUser,
		Content:        body,
		SourceType:     conversation.SourceSMS,
		SourceMetadata: map[string]any{
			"from":     from,
			"to":       to,
			"provider": "twilio",
		},
	}); err != nil {
		p.logger.Error("inbound sms append failed",
			slog.String("conversation_id", conv.ID),
			slog.String("error", err.Error()))
		return
	}

	p.logger.Info("inbound sms recorded",
		slog.String("conversation_id", conv.ID),
		slog.String("client_id", client.ID))
}

// ListFallbacks returns held unmatched messages, newest first.
func (p *InboundProcessor) ListFallbacks(ctx context.Context, limit, offset int32) ([]Fallback, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := p.queries.ListInboundFallbacks(ctx, sqlc.ListInboundFallbacksParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list inbound fallbacks: %w", err)
	}
	fallbacks := make([]Fallback, 0, len(rows))
	for _, row := range rows {
		fallbacks = append(fallbacks, Fallback{
			ID:         db.UUIDToString(row.ID),
			FromNumber: phone.FormatForDisplay(row.FromNumber),
			ToNumber:   phone.FormatForDisplay(row.ToNumber),
			Body:       row.Body,
			ReceivedAt: row.ReceivedAt.Time,
		})
	}
	return fallbacks, nil
}
