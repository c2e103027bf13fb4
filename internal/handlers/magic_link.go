package handlers

import (
	"html"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/sms"
)

// MagicLinkHandler serves the full text behind truncated SMS messages. The
// route is public; the token is the only credential.
type MagicLinkHandler struct {
	sms    *sms.Service
	logger *slog.Logger
}

func NewMagicLinkHandler(log *slog.Logger, smsService *sms.Service) *MagicLinkHandler {
	return &MagicLinkHandler{
		sms:    smsService,
		logger: log.With(slog.String("handler", "magic_link")),
	}
}

func (h *MagicLinkHandler) Register(e *echo.Echo) {
	e.GET("/l/:token", h.Resolve)
}

func (h *MagicLinkHandler) Resolve(c echo.Context) error {
	link, err := h.sms.Resolve(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httpError(err)
	}

	page := `<!DOCTYPE html>
<html>
  <head><meta name="viewport" content="width=device-width, initial-scale=1"><title>Message</title></head>
  <body style="font-family: -apple-system, Arial, sans-serif; max-width: 600px; margin: 40px auto; padding: 0 16px; color: #1f2937;">
    <p style="white-space: pre-wrap;">` + html.EscapeString(link.Content) + `</p>
  </body>
</html>`
	return c.HTML(http.StatusOK, page)
}
