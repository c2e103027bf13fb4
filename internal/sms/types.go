package sms

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured means the admin has no usable SMS credentials.
	ErrNotConfigured = errors.New("sms not configured")
	// ErrProvider wraps upstream provider failures.
	ErrProvider = errors.New("sms provider error")
	// ErrLinkNotFound covers unknown and expired magic link tokens.
	ErrLinkNotFound = errors.New("sms link not found")
	// ErrNoRecipient means the conversation's client has no phone on file.
	ErrNoRecipient = errors.New("client has no phone number")
)

// Truncation policy for outbound messages.
const (
	maxDirectLen = 140
	truncateAt   = 120
	linkNotice   = "... See full message: "
)

// linkTTL is how long a magic link stays resolvable.
const linkTTL = 24 * time.Hour

// Settings is an admin's provider configuration as exposed over the API.
// The auth token never leaves the service in the clear.
type Settings struct {
	PhoneNumber  string `json:"phone_number"`
	AccountSID   string `json:"account_sid"`
	AuthTokenSet bool   `json:"auth_token_set"`
}

// SettingsInput carries a settings write, auth token in the clear.
type SettingsInput struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	AccountSID  string `json:"account_sid" validate:"required"`
	AuthToken   string `json:"auth_token" validate:"required"`
}

// credentials is the decrypted form handed to the provider adapter.
type credentials struct {
	PhoneNumber string
	AccountSID  string
	AuthToken   string
}

// SendRequest is one outbound message for a provider adapter.
type SendRequest struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
	Body       string
}

// Sender delivers a message through an SMS provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) error
}

// Link is a resolved magic link.
type Link struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// Fallback is an inbound message that matched no client, held for admin
// triage.
type Fallback struct {
	ID         string    `json:"id"`
	FromNumber string    `json:"from_number"`
	ToNumber   string    `json:"to_number"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}
