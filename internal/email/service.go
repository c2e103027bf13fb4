// Package email renders and sends transactional emails, logging every
// attempt.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
)

// Conversations is the slice of the conversation manager the audit trail
// needs.
type Conversations interface {
	GetByClient(ctx context.Context, clientID string) (conversation.Conversation, error)
	AppendMessage(ctx context.Context, input conversation.AppendInput) (conversation.Message, error)
}

type Service struct {
	queries       *sqlc.Queries
	sender        Sender
	conversations Conversations
	renderer      *renderer
	logger        *slog.Logger
}

func NewService(log *slog.Logger, queries *sqlc.Queries, sender Sender, conversations Conversations) (*Service, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Service{
		queries:       queries,
		sender:        sender,
		conversations: conversations,
		renderer:      r,
		logger:        log.With(slog.String("service", "email")),
	}, nil
}

// Send renders the template, delivers the email, and writes exactly one log
// row per attempt, render and provider failures included. When the recipient's client
// has a conversation, the send also leaves a system message there; a client
// without one is skipped silently.
func (s *Service) Send(ctx context.Context, input SendInput) (Log, error) {
	subject, html, err := s.renderer.render(input.Type, input.Data)
	if err != nil {
		// The attempt still gets its failed log row, mirroring provider
		// failures. The subject never materialized.
		logRow, logErr := s.writeLog(ctx, input, "", "", err)
		if logErr != nil {
			s.logger.Error("email log write failed",
				slog.String("recipient", input.Recipient),
				slog.String("error", logErr.Error()))
		}
		return logRow, err
	}
	text, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		// A broken text alternative never blocks the send.
		s.logger.Warn("text alternative failed", slog.String("error", err.Error()))
		text = ""
	}

	messageID, sendErr := s.sender.Send(ctx, Outbound{
		To:      []string{input.Recipient},
		Subject: subject,
		HTML:    html,
		Text:    text,
	})

	logRow, logErr := s.writeLog(ctx, input, subject, messageID, sendErr)
	if logErr != nil {
		s.logger.Error("email log write failed",
			slog.String("recipient", input.Recipient),
			slog.String("error", logErr.Error()))
		if sendErr == nil {
			return Log{}, fmt.Errorf("record email log: %w", logErr)
		}
	}
	if sendErr != nil {
		s.logger.Error("email send failed",
			slog.String("recipient", input.Recipient),
			slog.String("type", input.Type),
			slog.String("error", sendErr.Error()))
		return logRow, fmt.Errorf("%w: %s", ErrProvider, sendErr.Error())
	}

	s.logger.Info("email sent",
		slog.String("recipient", input.Recipient),
		slog.String("type", input.Type))
	s.recordOnConversation(ctx, input.ClientID, subject)
	return logRow, nil
}

func (s *Service) writeLog(ctx context.Context, input SendInput, subject, messageID string, sendErr error) (Log, error) {
	status := StatusSent
	errText := ""
	if sendErr != nil {
		status = StatusFailed
		errText = sendErr.Error()
	}
	metadata := map[string]any{}
	if messageID != "" {
		metadata["message_id"] = messageID
	}
	if input.ClientID != "" {
		metadata["client_id"] = input.ClientID
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		encoded = []byte("{}")
	}

	row, err := s.queries.CreateEmailLog(ctx, sqlc.CreateEmailLogParams{
		Recipient: input.Recipient,
		Type:      input.Type,
		Subject:   subject,
		Status:    status,
		Error:     errText,
		Metadata:  encoded,
	})
	if err != nil {
		return Log{}, err
	}
	return toLog(row), nil
}

// recordOnConversation appends the audit message best-effort. Failures are
// logged, never surfaced: the email already went out.
func (s *Service) recordOnConversation(ctx context.Context, clientID, subject string) {
	if clientID == "" {
		return
	}
	conv, err := s.conversations.GetByClient(ctx, clientID)
	if err != nil {
		if !errors.Is(err, conversation.ErrNotFound) {
			s.logger.Warn("conversation lookup failed",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()))
		}
		return
	}
	if _, err := s.conversations.AppendMessage(ctx, conversation.AppendInput{
		ConversationID: conv.ID,
		Type:           conversation.TypeSystem,
		Content:        "Email sent: " + subject,
		SourceType:     conversation.SourceEmail,
		SourceMetadata: map[string]any{"subject": subject},
	}); err != nil {
		s.logger.Warn("email audit append failed",
			slog.String("conversation_id", conv.ID),
			slog.String("error", err.Error()))
	}
}

// ListLogs pages through the send history, newest first.
func (s *Service) ListLogs(ctx context.Context, limit, offset int32) ([]Log, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.queries.ListEmailLogs(ctx, sqlc.ListEmailLogsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	logs := make([]Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, toLog(row))
	}
	return logs, nil
}

func toLog(row sqlc.EmailLog) Log {
	l := Log{
		ID:        db.UUIDToString(row.ID),
		Recipient: row.Recipient,
		Type:      row.Type,
		Subject:   row.Subject,
		Status:    row.Status,
		Error:     row.Error,
	}
	if row.CreatedAt.Valid {
		l.CreatedAt = row.CreatedAt.Time
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &l.Metadata)
	}
	return l
}
