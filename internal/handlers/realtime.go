package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/conversation"
	"github.com/agencydesk/relay/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Authorization headers on websockets; the JWT
	// middleware reads the token query parameter instead, so origin checks
	// stay permissive.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RealtimeHandler upgrades authenticated connections and mediates
// per-conversation subscriptions.
type RealtimeHandler struct {
	hub           *realtime.Hub
	conversations *conversation.Service
	logger        *slog.Logger
}

func NewRealtimeHandler(log *slog.Logger, hub *realtime.Hub, conversations *conversation.Service) *RealtimeHandler {
	return &RealtimeHandler{
		hub:           hub,
		conversations: conversations,
		logger:        log.With(slog.String("handler", "realtime")),
	}
}

func (h *RealtimeHandler) Register(e *echo.Echo) {
	e.GET("/ws", h.Connect)
}

func (h *RealtimeHandler) Connect(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := realtime.NewClient(conn, identity.UserID)
	h.logger.Info("websocket connected", slog.String("user_id", identity.UserID))

	go client.WritePump()
	client.ReadPump(func(cl *realtime.Client, msg realtime.ControlMessage) {
		h.handleControl(c, identity, cl, msg)
	})

	h.hub.Detach(client)
	client.Close()
	h.logger.Info("websocket disconnected", slog.String("user_id", identity.UserID))
	return nil
}

func (h *RealtimeHandler) handleControl(c echo.Context, identity auth.Identity, client *realtime.Client, msg realtime.ControlMessage) {
	if msg.ConversationID == "" {
		return
	}
	switch msg.Action {
	case realtime.ActionSubscribe:
		if !h.canFollow(c, identity, msg.ConversationID) {
			h.logger.Warn("subscription denied",
				slog.String("user_id", identity.UserID),
				slog.String("conversation_id", msg.ConversationID))
			return
		}
		h.hub.Subscribe(client, msg.ConversationID)
	case realtime.ActionUnsubscribe:
		h.hub.Unsubscribe(client, msg.ConversationID)
	}
}

func (h *RealtimeHandler) canFollow(c echo.Context, identity auth.Identity, conversationID string) bool {
	if identity.Role == auth.RoleAdmin {
		return true
	}
	ok, err := h.conversations.IsParticipant(c.Request().Context(), conversationID, identity.UserID)
	if err != nil {
		return false
	}
	return ok
}
