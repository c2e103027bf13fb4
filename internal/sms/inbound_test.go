package sms

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/profiles"
)

func TestHandleInboundMatchedClient(t *testing.T) {
	clientID := uuid.NewString()
	convID := uuid.NewString()

	dbtx := &fakeDBTX{}
	convs := &fakeConversations{conv: conversation.Conversation{ID: convID, ClientID: clientID}}
	dir := &fakeDirectory{client: profiles.Client{ID: clientID, Phone: "14155550100"}}
	proc := NewInboundProcessor(slog.Default(), sqlc.New(dbtx), convs, dir)

	proc.HandleInbound(context.Background(), "+1 (415) 555-0100", "12125550111", "on my way")

	require.Len(t, convs.appended, 1)
	appended := convs.appended[0]
	assert.Equal(t, convID, appended.ConversationID)
	assert.Equal(t, conversation.TypeUser, appended.Type)
	assert.Equal(t, "on my way", appended.Content)
	assert.Equal(t, conversation.SourceSMS, appended.SourceType)
	assert.Equal(t, "twilio", appended.SourceMetadata["provider"])
	// The text belongs to the client on the timeline, so it never counts
	// as unread for them.
	assert.Equal(t, clientID, appended.SenderID)
	assert.Empty(t, dbtx.execSQL)
}

func TestHandleInboundUnknownNumberRecordsFallback(t *testing.T) {
	dbtx := &fakeDBTX{}
	convs := &fakeConversations{}
	dir := &fakeDirectory{err: profiles.ErrNotFound}
	proc := NewInboundProcessor(slog.Default(), sqlc.New(dbtx), convs, dir)

	proc.HandleInbound(context.Background(), "19995550000", "12125550111", "who dis")

	assert.Empty(t, convs.appended)
	require.Len(t, dbtx.execSQL, 1)
	assert.Contains(t, dbtx.execSQL[0], "inbound_fallbacks")
	assert.Equal(t, []any{"19995550000", "12125550111", "who dis"}, dbtx.execArgs[0])
}

func TestHandleInboundLookupFailureIsHeldNotMisfiled(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	dbtx := &fakeDBTX{}
	convs := &fakeConversations{}
	dir := &fakeDirectory{err: errors.New("connection refused")}
	proc := NewInboundProcessor(log, sqlc.New(dbtx), convs, dir)

	proc.HandleInbound(context.Background(), "14155550100", "12125550111", "running late")

	// The text is held either way, but a store failure is not an unknown
	// number.
	assert.Empty(t, convs.appended)
	require.Len(t, dbtx.execSQL, 1)
	assert.Contains(t, dbtx.execSQL[0], "inbound_fallbacks")
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "client lookup failed")
	assert.NotContains(t, logs.String(), "unknown number")
}

func TestHandleInboundMissingFields(t *testing.T) {
	dbtx := &fakeDBTX{}
	convs := &fakeConversations{}
	dir := &fakeDirectory{client: profiles.Client{ID: uuid.NewString()}}
	proc := NewInboundProcessor(slog.Default(), sqlc.New(dbtx), convs, dir)

	proc.HandleInbound(context.Background(), "", "12125550111", "body")
	proc.HandleInbound(context.Background(), "14155550100", "12125550111", "")

	assert.Empty(t, convs.appended)
	assert.Empty(t, dbtx.execSQL)
}

func TestListFallbacks(t *testing.T) {
	id, pgID := mustUUID(t)
	received := time.Now().UTC()

	dbtx := &fakeDBTX{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &fakeRows{rows: []func(dest ...any) error{
				func(dest ...any) error {
					*dest[0].(*pgtype.UUID) = pgID
					*dest[1].(*string) = "19995550000"
					*dest[2].(*string) = "12125550111"
					*dest[3].(*string) = "who dis"
					*dest[4].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: received, Valid: true}
					return nil
				},
			}}, nil
		},
	}
	proc := NewInboundProcessor(slog.Default(), sqlc.New(dbtx), &fakeConversations{}, &fakeDirectory{})

	fallbacks, err := proc.ListFallbacks(context.Background(), 0, -5)
	require.NoError(t, err)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, id, fallbacks[0].ID)
	assert.Equal(t, "+1 (999) 555-0000", fallbacks[0].FromNumber)
	assert.Equal(t, "who dis", fallbacks[0].Body)
	assert.Equal(t, received, fallbacks[0].ReceivedAt)

	// Zero limit and negative offset fall back to the defaults.
	require.Len(t, dbtx.queryArgs, 1)
	assert.Equal(t, []any{int32(50), int32(0)}, dbtx.queryArgs[0])
}

func TestHandleInboundAppendFailureIsSwallowed(t *testing.T) {
	clientID := uuid.NewString()

	convs := &fakeConversations{
		conv:      conversation.Conversation{ID: uuid.NewString(), ClientID: clientID},
		appendErr: assert.AnError,
	}
	dir := &fakeDirectory{client: profiles.Client{ID: clientID}}
	proc := NewInboundProcessor(slog.Default(), sqlc.New(&fakeDBTX{}), convs, dir)

	// Must not panic or surface the error.
	proc.HandleInbound(context.Background(), "14155550100", "12125550111", "hello")
}
