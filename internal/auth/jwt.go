// Package auth validates platform-issued JWTs and exposes the caller
// identity to handlers. Credential verification lives in the platform's auth
// system; the relay only checks signatures and claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	claimSubject = "sub"
	claimUserID  = "user_id"
	claimRole    = "role"
)

// Roles assigned at profile creation. Immutable.
const (
	RoleAdmin      = "admin"
	RoleTeamMember = "team_member"
	RoleClient     = "client"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

// IsStaff reports whether the caller is an admin or team member.
func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin || i.Role == RoleTeamMember
}

// JWTMiddleware returns a JWT auth middleware configured for HS256 tokens.
// Tokens are read from the Authorization header or, for websocket upgrades,
// the "token" query parameter.
func JWTMiddleware(secret string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		TokenLookup:   "header:Authorization:Bearer ,query:token",
		Skipper:       skipper,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})
}

// IdentityFromContext extracts the caller identity from JWT claims.
func IdentityFromContext(c echo.Context) (Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return Identity{}, ErrNotAuthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrNotAuthenticated
	}

	userID := claimString(claims, claimUserID)
	if userID == "" {
		userID = claimString(claims, claimSubject)
	}
	if userID == "" {
		return Identity{}, ErrNotAuthenticated
	}
	return Identity{
		UserID: userID,
		Role:   claimString(claims, claimRole),
	}, nil
}

// RequireRole returns ErrNotAuthorized unless the identity holds one of the
// given roles.
func RequireRole(identity Identity, roles ...string) error {
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q", ErrNotAuthorized, identity.Role)
}

// GenerateToken creates a signed JWT for the user. Used by tests and by the
// platform side when minting relay tokens.
func GenerateToken(userID, role, secret string, expiresIn time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is required")
	}
	if expiresIn <= 0 {
		return "", time.Time{}, fmt.Errorf("jwt expires in must be positive")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(expiresIn)
	claims := jwt.MapClaims{
		claimSubject: userID,
		claimUserID:  userID,
		claimRole:    role,
		"iat":        now.Unix(),
		"exp":        expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	raw, ok := claims[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(raw)
	}
}
