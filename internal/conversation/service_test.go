package conversation

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/profiles"
)

// fakeRow implements pgx.Row with a custom scan function.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// fakeRows implements pgx.Rows over a slice of scan funcs, one per row.
type fakeRows struct {
	rows []func(dest ...any) error
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}
func (r *fakeRows) Scan(dest ...any) error { return r.rows[r.idx-1](dest...) }
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

// fakeDBTX implements sqlc.DBTX for unit testing.
type fakeDBTX struct {
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	execs   []string
	queries []string
}

func (d *fakeDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, sql)
	if d.execFunc != nil {
		return d.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (d *fakeDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.queries = append(d.queries, sql)
	if d.queryFunc != nil {
		return d.queryFunc(ctx, sql, args...)
	}
	return &fakeRows{}, nil
}

func (d *fakeDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if d.queryRowFunc != nil {
		return d.queryRowFunc(ctx, sql, args...)
	}
	return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

type fakeDirectory struct {
	client profiles.Client
	staff  []string
	err    error
}

func (d *fakeDirectory) GetClient(ctx context.Context, clientID string) (profiles.Client, error) {
	if d.err != nil {
		return profiles.Client{}, d.err
	}
	return d.client, nil
}

func (d *fakeDirectory) ListAssignedStaff(ctx context.Context, clientID string) ([]string, error) {
	return d.staff, nil
}

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(conversationID, event string, payload any) {
	p.events = append(p.events, event)
}

func conversationScan(id, clientID pgtype.UUID) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*pgtype.UUID) = id
		*dest[1].(*pgtype.UUID) = clientID
		*dest[2].(*pgtype.Timestamptz) = pgtype.Timestamptz{}
		*dest[3].(*string) = ""
		*dest[4].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now(), Valid: true}
		return nil
	}
}

func messageScan(id, convID, senderID pgtype.UUID, content string) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*pgtype.UUID) = id
		*dest[1].(*pgtype.UUID) = convID
		*dest[2].(*pgtype.UUID) = senderID
		*dest[3].(*string) = TypeUser
		*dest[4].(*string) = content
		*dest[5].(*[]byte) = []byte(`[]`)
		*dest[6].(*string) = SourceChat
		*dest[7].(*[]byte) = []byte(`{}`)
		*dest[8].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now(), Valid: true}
		return nil
	}
}

func mustUUID(t *testing.T) (string, pgtype.UUID) {
	t.Helper()
	id := uuid.NewString()
	pgID, err := db.ParseUUID(id)
	require.NoError(t, err)
	return id, pgID
}

func TestGetOrCreateRequiresRequester(t *testing.T) {
	svc := NewService(slog.Default(), sqlc.New(&fakeDBTX{}), &fakeDirectory{}, nil)

	_, err := svc.GetOrCreate(context.Background(), uuid.NewString(), "")
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestGetOrCreateUnknownClient(t *testing.T) {
	svc := NewService(slog.Default(), sqlc.New(&fakeDBTX{}),
		&fakeDirectory{err: profiles.ErrNotFound}, nil)

	_, err := svc.GetOrCreate(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateUpsertsParticipants(t *testing.T) {
	clientID, pgClientID := mustUUID(t)
	requesterID, _ := mustUUID(t)
	_, pgConvID := mustUUID(t)

	dbtx := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeRow{scanFunc: conversationScan(pgConvID, pgClientID)}
		},
	}
	svc := NewService(slog.Default(), sqlc.New(dbtx),
		&fakeDirectory{client: profiles.Client{ID: clientID}, staff: []string{requesterID}}, nil)

	conv, err := svc.GetOrCreate(context.Background(), clientID, requesterID)
	require.NoError(t, err)
	assert.Equal(t, db.UUIDToString(pgConvID), conv.ID)
	assert.Equal(t, clientID, conv.ClientID)

	// One insert and one participant upsert.
	require.Len(t, dbtx.execs, 2)
	assert.Contains(t, dbtx.execs[0], "INSERT INTO conversations")
	assert.Contains(t, dbtx.execs[1], "conversation_participants")
}

func TestParticipantSetDeduplicates(t *testing.T) {
	clientID := uuid.NewString()
	requesterID := uuid.NewString()
	staffID := uuid.NewString()

	ids := participantSet(clientID, requesterID, []string{staffID, requesterID, clientID, "not-a-uuid", ""})
	assert.Len(t, ids, 3)

	// System path: no requester.
	ids = participantSet(clientID, "", []string{staffID})
	assert.Len(t, ids, 2)
}

func TestAppendMessagePublishesEvents(t *testing.T) {
	convID, pgConvID := mustUUID(t)
	senderID, pgSenderID := mustUUID(t)
	_, pgMsgID := mustUUID(t)

	dbtx := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeRow{scanFunc: messageScan(pgMsgID, pgConvID, pgSenderID, "hello")}
		},
	}
	pub := &fakePublisher{}
	svc := NewService(slog.Default(), sqlc.New(dbtx), &fakeDirectory{}, pub)

	msg, err := svc.AppendMessage(context.Background(), AppendInput{
		ConversationID: convID,
		SenderID:       senderID,
		Type:           TypeUser,
		Content:        "hello",
		SourceType:     SourceChat,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, senderID, msg.SenderID)

	// Parent update plus sender self-read.
	require.Len(t, dbtx.execs, 2)
	assert.Contains(t, dbtx.execs[0], "UPDATE conversations")
	assert.Contains(t, dbtx.execs[1], "last_read_at")

	assert.Equal(t, []string{EventMessageCreated, EventConversationUpdated}, pub.events)
}

func TestAppendMessageSystemSkipsSelfRead(t *testing.T) {
	convID, pgConvID := mustUUID(t)
	_, pgMsgID := mustUUID(t)

	dbtx := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeRow{scanFunc: messageScan(pgMsgID, pgConvID, pgtype.UUID{}, "inbound")}
		},
	}
	svc := NewService(slog.Default(), sqlc.New(dbtx), &fakeDirectory{}, nil)

	msg, err := svc.AppendMessage(context.Background(), AppendInput{
		ConversationID: convID,
		Type:           TypeSystem,
		Content:        "inbound",
		SourceType:     SourceSMS,
	})
	require.NoError(t, err)
	assert.Empty(t, msg.SenderID)

	require.Len(t, dbtx.execs, 1)
	assert.Contains(t, dbtx.execs[0], "UPDATE conversations")
}

func TestListMessagesPreservesStoreOrder(t *testing.T) {
	convID, pgConvID := mustUUID(t)
	_, pgSenderID := mustUUID(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rowAt := func(content string, at time.Time) func(dest ...any) error {
		_, pgMsgID := mustUUID(t)
		return func(dest ...any) error {
			*dest[0].(*pgtype.UUID) = pgMsgID
			*dest[1].(*pgtype.UUID) = pgConvID
			*dest[2].(*pgtype.UUID) = pgSenderID
			*dest[3].(*string) = TypeUser
			*dest[4].(*string) = content
			*dest[5].(*[]byte) = []byte(`[]`)
			*dest[6].(*string) = SourceChat
			*dest[7].(*[]byte) = []byte(`{}`)
			*dest[8].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: at, Valid: true}
			return nil
		}
	}

	dbtx := &fakeDBTX{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &fakeRows{rows: []func(dest ...any) error{
				rowAt("first", base),
				rowAt("second", base.Add(time.Second)),
				rowAt("third", base.Add(time.Second)),
				rowAt("fourth", base.Add(2*time.Second)),
			}}, nil
		},
	}
	svc := NewService(slog.Default(), sqlc.New(dbtx), &fakeDirectory{}, nil)

	messages, err := svc.ListMessages(context.Background(), convID)
	require.NoError(t, err)
	require.Len(t, messages, 4)

	require.Len(t, dbtx.queries, 1)
	assert.Contains(t, dbtx.queries[0], "ORDER BY created_at ASC")

	var contents []string
	for i, msg := range messages {
		contents = append(contents, msg.Content)
		if i > 0 {
			assert.False(t, msg.CreatedAt.Before(messages[i-1].CreatedAt))
		}
	}
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, contents)
}

func TestPreviewTruncation(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	long := strings.Repeat("x", 150)
	got := preview(long)
	assert.Len(t, got, 100)

	exact := strings.Repeat("y", 100)
	assert.Equal(t, exact, preview(exact))
}
