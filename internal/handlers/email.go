package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/email"
)

// EmailHandler exposes the email dispatcher and its send history.
type EmailHandler struct {
	email  *email.Service
	logger *slog.Logger
}

func NewEmailHandler(log *slog.Logger, emailService *email.Service) *EmailHandler {
	return &EmailHandler{
		email:  emailService,
		logger: log.With(slog.String("handler", "email")),
	}
}

func (h *EmailHandler) Register(e *echo.Echo) {
	e.POST("/emails/send", h.Send)
	e.GET("/emails/logs", h.ListLogs)
}

// Send renders and dispatches a transactional email. Staff only.
func (h *EmailHandler) Send(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin, auth.RoleTeamMember); err != nil {
		return httpError(err)
	}

	var input email.SendInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(input.Recipient) == "" || strings.TrimSpace(input.Type) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient and type are required")
	}

	logRow, err := h.email.Send(c.Request().Context(), input)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, logRow)
}

// ListLogs pages the send history. Admin only.
func (h *EmailHandler) ListLogs(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
		return httpError(err)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	logs, err := h.email.ListLogs(c.Request().Context(), int32(limit), int32(offset))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, logs)
}
