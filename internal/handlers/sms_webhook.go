package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/sms"
)

// emptyTwiML tells Twilio to take no further action. The webhook always
// responds with it, whatever happened internally, so the provider never
// retries or surfaces an error to the texter.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// SMSWebhookHandler receives Twilio's inbound message callbacks. The route is
// unauthenticated; Twilio posts form-encoded parameters.
type SMSWebhookHandler struct {
	inbound *sms.InboundProcessor
	logger  *slog.Logger
}

func NewSMSWebhookHandler(log *slog.Logger, inbound *sms.InboundProcessor) *SMSWebhookHandler {
	return &SMSWebhookHandler{
		inbound: inbound,
		logger:  log.With(slog.String("handler", "sms_webhook")),
	}
}

func (h *SMSWebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhooks/sms", h.Receive)
}

func (h *SMSWebhookHandler) Receive(c echo.Context) error {
	from := c.FormValue("From")
	to := c.FormValue("To")
	body := c.FormValue("Body")

	h.inbound.HandleInbound(c.Request().Context(), from, to, body)

	return c.Blob(http.StatusOK, "text/xml", []byte(emptyTwiML))
}
