package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithToken(t *testing.T, secret, userID, role string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	signed, _, err := GenerateToken(userID, role, secret, time.Minute)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	c.Set("user", token)
	return c
}

func TestIdentityFromContext(t *testing.T) {
	c := contextWithToken(t, "test-secret", "user-123", RoleTeamMember)

	identity, err := IdentityFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserID)
	assert.Equal(t, RoleTeamMember, identity.Role)
	assert.True(t, identity.IsStaff())
}

func TestIdentityFromContextMissingToken(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := IdentityFromContext(c)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRequireRole(t *testing.T) {
	admin := Identity{UserID: "u1", Role: RoleAdmin}
	client := Identity{UserID: "u2", Role: RoleClient}

	assert.NoError(t, RequireRole(admin, RoleAdmin))
	assert.NoError(t, RequireRole(client, RoleAdmin, RoleClient))
	assert.ErrorIs(t, RequireRole(client, RoleAdmin, RoleTeamMember), ErrNotAuthorized)
}

func TestGenerateTokenValidation(t *testing.T) {
	_, _, err := GenerateToken("", RoleAdmin, "secret", time.Minute)
	assert.Error(t, err)
	_, _, err = GenerateToken("u1", RoleAdmin, "", time.Minute)
	assert.Error(t, err)
	_, _, err = GenerateToken("u1", RoleAdmin, "secret", 0)
	assert.Error(t, err)
}
