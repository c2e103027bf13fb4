package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/sms"
)

// SMSHandler exposes outbound SMS, provider settings and inbound triage
// endpoints.
type SMSHandler struct {
	sms      *sms.Service
	settings *sms.SettingsService
	inbound  *sms.InboundProcessor
	logger   *slog.Logger
}

func NewSMSHandler(log *slog.Logger, smsService *sms.Service, settings *sms.SettingsService, inbound *sms.InboundProcessor) *SMSHandler {
	return &SMSHandler{
		sms:      smsService,
		settings: settings,
		inbound:  inbound,
		logger:   log.With(slog.String("handler", "sms")),
	}
}

func (h *SMSHandler) Register(e *echo.Echo) {
	e.POST("/conversations/:id/sms", h.Send)
	e.GET("/settings/sms", h.GetSettings)
	e.PUT("/settings/sms", h.PutSettings)
	e.GET("/sms/fallbacks", h.ListFallbacks)
}

type sendSMSRequest struct {
	Body string `json:"body"`
}

// Send relays a message to the conversation's client over SMS. Admin only:
// the Twilio credentials belong to the sending admin.
func (h *SMSHandler) Send(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
		return httpError(err)
	}

	var req sendSMSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Body) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "body is required")
	}

	msg, err := h.sms.Send(c.Request().Context(), c.Param("id"), identity.UserID, req.Body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *SMSHandler) GetSettings(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
		return httpError(err)
	}

	settings, err := h.settings.Get(c.Request().Context(), identity.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *SMSHandler) PutSettings(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
		return httpError(err)
	}

	var input sms.SettingsInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if input.PhoneNumber == "" || input.AccountSID == "" || input.AuthToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "phone_number, account_sid and auth_token are required")
	}

	settings, err := h.settings.Upsert(c.Request().Context(), identity.UserID, input)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// ListFallbacks pages inbound messages that matched no client. Admin only.
func (h *SMSHandler) ListFallbacks(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	if err := auth.RequireRole(identity, auth.RoleAdmin); err != nil {
		return httpError(err)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	fallbacks, err := h.inbound.ListFallbacks(c.Request().Context(), int32(limit), int32(offset))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fallbacks)
}
