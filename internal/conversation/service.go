// Package conversation manages the single per-client conversation thread and
// the messages flowing into it from every channel.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/profiles"
)

// Directory resolves the profiles a conversation is seeded from.
type Directory interface {
	GetClient(ctx context.Context, clientID string) (profiles.Client, error)
	ListAssignedStaff(ctx context.Context, clientID string) ([]string, error)
}

// Publisher receives conversation events for realtime fan-out.
type Publisher interface {
	Publish(conversationID, event string, payload any)
}

// Realtime event names.
const (
	EventMessageCreated      = "message.created"
	EventConversationUpdated = "conversation.updated"
)

type Service struct {
	queries   *sqlc.Queries
	directory Directory
	publisher Publisher
	logger    *slog.Logger
}

func NewService(log *slog.Logger, queries *sqlc.Queries, directory Directory, publisher Publisher) *Service {
	return &Service{
		queries:   queries,
		directory: directory,
		publisher: publisher,
		logger:    log.With(slog.String("service", "conversation")),
	}
}

// GetOrCreate returns the client's conversation, creating it on first touch.
// The insert races safely: ON CONFLICT DO NOTHING followed by a re-read, so
// concurrent callers converge on one row. Participants are refreshed on every
// call so newly assigned staff get pulled in.
func (s *Service) GetOrCreate(ctx context.Context, clientID, requesterID string) (Conversation, error) {
	if requesterID == "" {
		return Conversation{}, auth.ErrNotAuthenticated
	}
	return s.getOrCreate(ctx, clientID, requesterID)
}

// GetOrCreateSystem is the service-role variant used by channel adapters
// (inbound SMS). No requester is added to the participant set.
func (s *Service) GetOrCreateSystem(ctx context.Context, clientID string) (Conversation, error) {
	return s.getOrCreate(ctx, clientID, "")
}

func (s *Service) getOrCreate(ctx context.Context, clientID, requesterID string) (Conversation, error) {
	client, err := s.directory.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, fmt.Errorf("resolve client: %w", err)
	}

	pgClientID, err := db.ParseUUID(client.ID)
	if err != nil {
		return Conversation{}, fmt.Errorf("invalid client id: %w", err)
	}

	inserted, err := s.queries.InsertConversation(ctx, pgClientID)
	if err != nil {
		return Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}
	row, err := s.queries.GetConversationByClient(ctx, pgClientID)
	if err != nil {
		return Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	if inserted > 0 {
		s.logger.Info("conversation created",
			slog.String("conversation_id", db.UUIDToString(row.ID)),
			slog.String("client_id", client.ID))
	}

	staff, err := s.directory.ListAssignedStaff(ctx, clientID)
	if err != nil {
		return Conversation{}, fmt.Errorf("list assigned staff: %w", err)
	}
	ids := participantSet(client.ID, requesterID, staff)
	if err := s.queries.UpsertParticipants(ctx, sqlc.UpsertParticipantsParams{
		ConversationID: row.ID,
		UserIds:        ids,
	}); err != nil {
		return Conversation{}, fmt.Errorf("upsert participants: %w", err)
	}

	return toConversation(row), nil
}

// participantSet builds the deduplicated participant list: the client, the
// requester (when present), and all assigned staff.
func participantSet(clientID, requesterID string, staff []string) []pgtype.UUID {
	seen := make(map[string]struct{}, len(staff)+2)
	ids := make([]pgtype.UUID, 0, len(staff)+2)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		pgID, err := db.ParseUUID(id)
		if err != nil {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, pgID)
	}
	add(clientID)
	add(requesterID)
	for _, id := range staff {
		add(id)
	}
	return ids
}

// AppendMessage inserts a message and keeps the parent row's denormalized
// fields in step, then notifies realtime subscribers. Sender self-read keeps
// the author's own unread count at zero.
func (s *Service) AppendMessage(ctx context.Context, input AppendInput) (Message, error) {
	pgConvID, err := db.ParseUUID(input.ConversationID)
	if err != nil {
		return Message{}, fmt.Errorf("invalid conversation id: %w", err)
	}
	var pgSenderID pgtype.UUID
	if input.SenderID != "" {
		pgSenderID, err = db.ParseUUID(input.SenderID)
		if err != nil {
			return Message{}, fmt.Errorf("invalid sender id: %w", err)
		}
	}
	if input.Type == "" {
		input.Type = TypeUser
	}
	if input.SourceType == "" {
		input.SourceType = SourceChat
	}

	attachments := []byte("[]")
	if len(input.Attachments) > 0 {
		attachments, err = json.Marshal(input.Attachments)
		if err != nil {
			return Message{}, fmt.Errorf("marshal attachments: %w", err)
		}
	}
	metadata := []byte("{}")
	if len(input.SourceMetadata) > 0 {
		metadata, err = json.Marshal(input.SourceMetadata)
		if err != nil {
			return Message{}, fmt.Errorf("marshal source metadata: %w", err)
		}
	}

	row, err := s.queries.CreateMessage(ctx, sqlc.CreateMessageParams{
		ConversationID: pgConvID,
		SenderID:       pgSenderID,
		Type:           input.Type,
		Content:        input.Content,
		Attachments:    attachments,
		SourceType:     input.SourceType,
		SourceMetadata: metadata,
	})
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}

	if err := s.queries.UpdateConversationLastMessage(ctx, sqlc.UpdateConversationLastMessageParams{
		ID:                 pgConvID,
		LastMessageAt:      row.CreatedAt,
		LastMessagePreview: preview(input.Content),
	}); err != nil {
		return Message{}, fmt.Errorf("update conversation: %w", err)
	}

	if input.SenderID != "" {
		if err := s.queries.MarkParticipantRead(ctx, sqlc.MarkParticipantReadParams{
			ConversationID: pgConvID,
			UserID:         pgSenderID,
		}); err != nil {
			s.logger.Warn("self-read failed",
				slog.String("conversation_id", input.ConversationID),
				slog.String("error", err.Error()))
		}
	}

	msg := toMessage(row)
	if s.publisher != nil {
		s.publisher.Publish(input.ConversationID, EventMessageCreated, msg)
		s.publisher.Publish(input.ConversationID, EventConversationUpdated, map[string]any{
			"conversation_id":      input.ConversationID,
			"last_message_at":      msg.CreatedAt,
			"last_message_preview": preview(input.Content),
		})
	}
	return msg, nil
}

// MarkRead stamps the participant's read cursor. Repeat calls only move the
// cursor forward in time.
func (s *Service) MarkRead(ctx context.Context, conversationID, userID string) error {
	pgConvID, err := db.ParseUUID(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}
	pgUserID, err := db.ParseUUID(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.queries.MarkParticipantRead(ctx, sqlc.MarkParticipantReadParams{
		ConversationID: pgConvID,
		UserID:         pgUserID,
	})
}

// IsParticipant reports whether the user belongs to the conversation.
func (s *Service) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	pgConvID, err := db.ParseUUID(conversationID)
	if err != nil {
		return false, fmt.Errorf("invalid conversation id: %w", err)
	}
	pgUserID, err := db.ParseUUID(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user id: %w", err)
	}
	return s.queries.IsParticipant(ctx, sqlc.IsParticipantParams{
		ConversationID: pgConvID,
		UserID:         pgUserID,
	})
}

// Get returns one conversation by id.
func (s *Service) Get(ctx context.Context, id string) (Conversation, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Conversation{}, fmt.Errorf("invalid conversation id: %w", err)
	}
	row, err := s.queries.GetConversationByID(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, err
	}
	return toConversation(row), nil
}

// GetByClient returns the client's conversation without creating one.
func (s *Service) GetByClient(ctx context.Context, clientID string) (Conversation, error) {
	pgID, err := db.ParseUUID(clientID)
	if err != nil {
		return Conversation{}, fmt.Errorf("invalid client id: %w", err)
	}
	row, err := s.queries.GetConversationByClient(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, err
	}
	return toConversation(row), nil
}

// ListMessages returns the conversation's messages in insertion order.
func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	pgID, err := db.ParseUUID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation id: %w", err)
	}
	rows, err := s.queries.ListMessagesByConversation(ctx, pgID)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toMessage(row))
	}
	return messages, nil
}

// ListForUser returns the user's conversations, most recent activity first,
// with unread counts.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Summary, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	rows, err := s.queries.ListConversationsForUser(ctx, pgID)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		summary := Summary{UnreadCount: row.UnreadCount}
		summary.Conversation = toConversation(sqlc.Conversation{
			ID:                 row.ID,
			ClientID:           row.ClientID,
			LastMessageAt:      row.LastMessageAt,
			LastMessagePreview: row.LastMessagePreview,
			CreatedAt:          row.CreatedAt,
		})
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen])
}

func toConversation(row sqlc.Conversation) Conversation {
	conv := Conversation{
		ID:                 db.UUIDToString(row.ID),
		ClientID:           db.UUIDToString(row.ClientID),
		LastMessagePreview: row.LastMessagePreview,
	}
	if row.LastMessageAt.Valid {
		t := row.LastMessageAt.Time
		conv.LastMessageAt = &t
	}
	if row.CreatedAt.Valid {
		conv.CreatedAt = row.CreatedAt.Time
	}
	return conv
}

func toMessage(row sqlc.Message) Message {
	msg := Message{
		ID:             db.UUIDToString(row.ID),
		ConversationID: db.UUIDToString(row.ConversationID),
		Type:           row.Type,
		Content:        row.Content,
		Attachments:    []Attachment{},
		SourceType:     row.SourceType,
	}
	if row.SenderID.Valid {
		msg.SenderID = db.UUIDToString(row.SenderID)
	}
	if row.CreatedAt.Valid {
		msg.CreatedAt = row.CreatedAt.Time
	}
	if len(row.Attachments) > 0 {
		if err := json.Unmarshal(row.Attachments, &msg.Attachments); err != nil {
			msg.Attachments = []Attachment{}
		}
	}
	if len(row.SourceMetadata) > 0 {
		_ = json.Unmarshal(row.SourceMetadata, &msg.SourceMetadata)
	}
	return msg
}
