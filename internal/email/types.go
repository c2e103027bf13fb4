package email

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnknownTemplate means the requested email type has no template.
	ErrUnknownTemplate = errors.New("unknown email template")
	// ErrProvider wraps upstream provider failures.
	ErrProvider = errors.New("email provider error")
)

// Email log statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Template names.
const (
	TemplateWelcome           = "welcome"
	TemplateMilestoneComplete = "milestone_complete"
	TemplateTaskAssigned      = "task_assigned"
)

// Outbound is one rendered email handed to a provider adapter. Text carries
// the plain-text alternative derived from the HTML body.
type Outbound struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Outbound) (string, error)
}

// SendInput describes one send request.
type SendInput struct {
	Recipient string         `json:"recipient" validate:"required,email"`
	Type      string         `json:"type" validate:"required"`
	Data      map[string]any `json:"data"`
	ClientID  string         `json:"client_id"`
}

// Log is an email_logs row as exposed over the API.
type Log struct {
	ID        string         `json:"id"`
	Recipient string         `json:"recipient"`
	Type      string         `json:"type"`
	Subject   string         `json:"subject"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
