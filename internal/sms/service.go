// Package sms sends conversation messages over SMS, keeps per-admin provider
// credentials, and folds inbound texts back into conversations.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/phone"
	"github.com/agencydesk/relay/internal/profiles"
)

// Conversations is the slice of the conversation manager the dispatcher needs.
type Conversations interface {
	Get(ctx context.Context, id string) (conversation.Conversation, error)
	GetOrCreateSystem(ctx context.Context, clientID string) (conversation.Conversation, error)
	AppendMessage(ctx context.Context, input conversation.AppendInput) (conversation.Message, error)
}

// Directory resolves clients and their phone numbers.
type Directory interface {
	GetClient(ctx context.Context, clientID string) (profiles.Client, error)
	FindClientByPhone(ctx context.Context, raw string) (profiles.Client, error)
}

type Service struct {
	queries       *sqlc.Queries
	settings      *SettingsService
	sender        Sender
	conversations Conversations
	directory     Directory
	baseURL       string
	logger        *slog.Logger
}

func NewService(
	log *slog.Logger,
	queries *sqlc.Queries,
	settings *SettingsService,
	sender Sender,
	conversations Conversations,
	directory Directory,
	baseURL string,
) *Service {
	return &Service{
		queries:       queries,
		settings:      settings,
		sender:        sender,
		conversations: conversations,
		directory:     directory,
		baseURL:       strings.TrimRight(baseURL, "/"),
		logger:        log.With(slog.String("service", "sms")),
	}
}

// Send delivers body to the conversation's client over SMS using the sending
// admin's credentials, then records the full content on the conversation.
// Bodies over 140 characters go out truncated with a magic link to the full
// text; the conversation copy is never truncated.
func (s *Service) Send(ctx context.Context, conversationID, adminID, body string) (conversation.Message, error) {
	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return conversation.Message{}, err
	}
	client, err := s.directory.GetClient(ctx, conv.ClientID)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("resolve client: %w", err)
	}
	to := phone.Normalize(client.Phone)
	if to == "" {
		return conversation.Message{}, ErrNoRecipient
	}

	creds, err := s.settings.credentials(ctx, adminID)
	if err != nil {
		return conversation.Message{}, err
	}

	transmitted := body
	truncated := false
	if len([]rune(body)) > maxDirectLen {
		link, err := s.createLink(ctx, conversationID, body)
		if err != nil {
			return conversation.Message{}, fmt.Errorf("create sms link: %w", err)
		}
		transmitted = string([]rune(body)[:truncateAt]) + linkNotice + link
		truncated = true
	}

	if err := s.sender.Send(ctx, SendRequest{
		AccountSID: creds.AccountSID,
		AuthToken:  creds.AuthToken,
		From:       "+" + creds.PhoneNumber,
		To:         "+" + to,
		Body:       transmitted,
	}); err != nil {
		s.logger.Error("sms send failed",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()))
		return conversation.Message{}, fmt.Errorf("%w: %s", ErrProvider, err.Error())
	}
	s.logger.Info("sms sent",
		slog.String("conversation_id", conversationID),
		slog.Bool("truncated", truncated))

	// The send already happened; an append failure here is surfaced but the
	// message is not re-sent.
	msg, err := s.conversations.AppendMessage(ctx, conversation.AppendInput{
		ConversationID: conversationID,
		SenderID:       adminID,
		Type:           conversation.TypeUser,
		Content:        body,
		SourceType:     conversation.SourceSMS,
		SourceMetadata: map[string]any{
			"to":        to,
			"from":      creds.PhoneNumber,
			"truncated": truncated,
		},
	})
	if err != nil {
		return conversation.Message{}, fmt.Errorf("record sent sms: %w", err)
	}
	return msg, nil
}

// createLink persists the full content under a fresh opaque token and returns
// the public URL.
func (s *Service) createLink(ctx context.Context, conversationID, content string) (string, error) {
	pgConvID, err := db.ParseUUID(conversationID)
	if err != nil {
		return "", fmt.Errorf("invalid conversation id: %w", err)
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.queries.CreateSMSLink(ctx, sqlc.CreateSMSLinkParams{
		Token:          token,
		ConversationID: pgConvID,
		Content:        content,
		ExpiresAt:      db.ToPgTimestamptz(time.Now().Add(linkTTL)),
	}); err != nil {
		return "", err
	}
	return s.baseURL + "/l/" + token, nil
}

// Resolve looks a magic link token up. Unknown and expired tokens are
// indistinguishable to the caller.
func (s *Service) Resolve(ctx context.Context, token string) (Link, error) {
	row, err := s.queries.GetSMSLink(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Link{}, ErrLinkNotFound
		}
		return Link{}, err
	}
	if row.ExpiresAt.Valid && row.ExpiresAt.Time.Before(time.Now()) {
		return Link{}, ErrLinkNotFound
	}
	return Link{
		ConversationID: db.UUIDToString(row.ConversationID),
		Content:        row.Content,
	}, nil
}
