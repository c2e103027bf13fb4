package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/email"
	"github.com/agencydesk/relay/internal/profiles"
	"github.com/agencydesk/relay/internal/sms"
)

// httpError maps service errors onto HTTP status codes. Anything unmapped
// bubbles up as a 500 through echo's error handler.
func httpError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrNotAuthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, auth.ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not authorized")
	case errors.Is(err, conversation.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	case errors.Is(err, profiles.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "client not found")
	case errors.Is(err, sms.ErrLinkNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "link not found or expired")
	case errors.Is(err, sms.ErrNotConfigured):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "SMS is not configured for this account")
	case errors.Is(err, sms.ErrNoRecipient):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "client has no phone number on file")
	case errors.Is(err, email.ErrUnknownTemplate):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "unknown email type")
	case errors.Is(err, sms.ErrProvider), errors.Is(err, email.ErrProvider):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}
