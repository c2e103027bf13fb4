package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/db"
	"github.com/agencydesk/relay/internal/db/sqlc"
	"github.com/agencydesk/relay/internal/profiles"
	"github.com/agencydesk/relay/internal/sms"
)

// fakeRow implements pgx.Row with a custom scan function.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// fakeDBTX implements sqlc.DBTX for unit testing.
type fakeDBTX struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row

	execSQL []string
}

func (d *fakeDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execSQL = append(d.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (d *fakeDBTX) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if d.queryRowFunc != nil {
		return d.queryRowFunc(ctx, sql, args...)
	}
	return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

type fakeConversations struct {
	conv conversation.Conversation
}

func (f *fakeConversations) Get(ctx context.Context, id string) (conversation.Conversation, error) {
	return f.conv, nil
}

func (f *fakeConversations) GetOrCreateSystem(ctx context.Context, clientID string) (conversation.Conversation, error) {
	return f.conv, nil
}

func (f *fakeConversations) AppendMessage(ctx context.Context, input conversation.AppendInput) (conversation.Message, error) {
	return conversation.Message{}, nil
}

type fakeDirectory struct {
	client profiles.Client
	err    error
}

func (f *fakeDirectory) GetClient(ctx context.Context, clientID string) (profiles.Client, error) {
	if f.err != nil {
		return profiles.Client{}, f.err
	}
	return f.client, nil
}

func (f *fakeDirectory) FindClientByPhone(ctx context.Context, raw string) (profiles.Client, error) {
	if f.err != nil {
		return profiles.Client{}, f.err
	}
	return f.client, nil
}

// withIdentity attaches a validated JWT the way the middleware would.
func withIdentity(c echo.Context, userID, role string) {
	c.Set("user", &jwt.Token{
		Valid:  true,
		Claims: jwt.MapClaims{"sub": userID, "user_id": userID, "role": role},
	})
}

func TestSMSWebhookAlwaysAcksWithEmptyTwiML(t *testing.T) {
	e := echo.New()

	cases := []struct {
		name string
		dir  *fakeDirectory
		form url.Values
	}{
		{
			name: "matched client",
			dir:  &fakeDirectory{client: profiles.Client{ID: uuid.NewString()}},
			form: url.Values{"From": {"+14155550100"}, "To": {"+12125550111"}, "Body": {"hi"}},
		},
		{
			name: "unknown number",
			dir:  &fakeDirectory{err: profiles.ErrNotFound},
			form: url.Values{"From": {"+19995550000"}, "To": {"+12125550111"}, "Body": {"hi"}},
		},
		{
			name: "missing body",
			dir:  &fakeDirectory{client: profiles.Client{ID: uuid.NewString()}},
			form: url.Values{"From": {"+14155550100"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc := sms.NewInboundProcessor(slog.Default(), sqlc.New(&fakeDBTX{}),
				&fakeConversations{conv: conversation.Conversation{ID: uuid.NewString()}}, tc.dir)
			h := NewSMSWebhookHandler(slog.Default(), proc)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(tc.form.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			rec := httptest.NewRecorder()

			err := h.Receive(e.NewContext(req, rec))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, emptyTwiML, rec.Body.String())
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/xml")
		})
	}
}

func TestMagicLinkResolve(t *testing.T) {
	e := echo.New()
	convID, err := db.ParseUUID(uuid.NewString())
	require.NoError(t, err)

	dbtx := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeRow{scanFunc: func(dest ...any) error {
				*dest[0].(*string) = "token123"
				*dest[1].(*pgtype.UUID) = convID
				*dest[2].(*string) = "full <script> message"
				*dest[3].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now().Add(time.Hour), Valid: true}
				*dest[4].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now(), Valid: true}
				return nil
			}}
		},
	}
	svc := sms.NewService(slog.Default(), sqlc.New(dbtx), nil, nil, nil, nil, "")
	h := NewMagicLinkHandler(slog.Default(), svc)

	req := httptest.NewRequest(http.MethodGet, "/l/token123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues("token123")

	require.NoError(t, h.Resolve(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "full &lt;script&gt; message")
}

func TestMagicLinkUnknownToken(t *testing.T) {
	e := echo.New()
	svc := sms.NewService(slog.Default(), sqlc.New(&fakeDBTX{}), nil, nil, nil, nil, "")
	h := NewMagicLinkHandler(slog.Default(), svc)

	req := httptest.NewRequest(http.MethodGet, "/l/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues("nope")

	err := h.Resolve(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestHTTPErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{auth.ErrNotAuthenticated, http.StatusUnauthorized},
		{auth.ErrNotAuthorized, http.StatusForbidden},
		{conversation.ErrNotFound, http.StatusNotFound},
		{profiles.ErrNotFound, http.StatusNotFound},
		{sms.ErrLinkNotFound, http.StatusNotFound},
		{sms.ErrNotConfigured, http.StatusUnprocessableEntity},
		{sms.ErrNoRecipient, http.StatusUnprocessableEntity},
		{sms.ErrProvider, http.StatusBadGateway},
	}
	for _, tc := range cases {
		var httpErr *echo.HTTPError
		require.ErrorAs(t, httpError(tc.err), &httpErr, tc.err.Error())
		assert.Equal(t, tc.code, httpErr.Code, tc.err.Error())
	}
}

func TestConversationEndpointsRequireAuth(t *testing.T) {
	e := echo.New()
	svc := conversation.NewService(slog.Default(), sqlc.New(&fakeDBTX{}), nil, nil)
	h := NewConversationHandler(slog.Default(), svc)

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()

	err := h.List(e.NewContext(req, rec))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestGetOrCreateForbidsOtherClients(t *testing.T) {
	e := echo.New()
	svc := conversation.NewService(slog.Default(), sqlc.New(&fakeDBTX{}), nil, nil)
	h := NewConversationHandler(slog.Default(), svc)

	req := httptest.NewRequest(http.MethodPost, "/clients/other/conversation", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("client_id")
	c.SetParamValues(uuid.NewString())
	withIdentity(c, uuid.NewString(), auth.RoleClient)

	err := h.GetOrCreate(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestSendSMSRequiresAdmin(t *testing.T) {
	e := echo.New()
	h := NewSMSHandler(slog.Default(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/conversations/x/sms", strings.NewReader(`{"body":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withIdentity(c, uuid.NewString(), auth.RoleTeamMember)

	err := h.Send(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
