package conversation

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("conversation not found")

// Message type discriminators.
const (
	TypeUser   = "user"
	TypeSystem = "system"
)

// Message source channels.
const (
	SourceChat  = "chat"
	SourceSMS   = "sms"
	SourceEmail = "email"
)

// previewLen caps the denormalized preview stored on the conversation row.
const previewLen = 100

// Attachment is a pointer to an uploaded file, stored as JSONB on the message.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type Conversation struct {
	ID                 string     `json:"id"`
	ClientID           string     `json:"client_id"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessagePreview string     `json:"last_message_preview"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Summary is a conversation as seen from one user's inbox.
type Summary struct {
	Conversation
	UnreadCount int64 `json:"unread_count"`
}

type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	SenderID       string         `json:"sender_id,omitempty"`
	Type           string         `json:"type"`
	Content        string         `json:"content"`
	Attachments    []Attachment   `json:"attachments"`
	SourceType     string         `json:"source_type"`
	SourceMetadata map[string]any `json:"source_metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// AppendInput describes one message to append to a conversation.
// SenderID is empty for system messages born outside a user session
// (email audit trail). Inbound SMS carries the matched client's id.
type AppendInput struct {
	ConversationID string
	SenderID       string
	Type           string
	Content        string
	Attachments    []Attachment
	SourceType     string
	SourceMetadata map[string]any
}
