package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agencydesk/relay/internal/auth"
	"github.com/agencydesk/relay/internal/conversation"
)

// ConversationHandler exposes the conversation and message endpoints.
type ConversationHandler struct {
	conversations *conversation.Service
	logger        *slog.Logger
}

func NewConversationHandler(log *slog.Logger, conversations *conversation.Service) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		logger:        log.With(slog.String("handler", "conversation")),
	}
}

func (h *ConversationHandler) Register(e *echo.Echo) {
	e.POST("/clients/:client_id/conversation", h.GetOrCreate)
	e.GET("/conversations", h.List)
	e.GET("/conversations/:id", h.Get)
	e.GET("/conversations/:id/messages", h.ListMessages)
	e.POST("/conversations/:id/messages", h.PostMessage)
	e.POST("/conversations/:id/read", h.MarkRead)
}

// GetOrCreate opens the client's conversation. Clients may only open their
// own; staff may open any client's.
func (h *ConversationHandler) GetOrCreate(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	clientID := c.Param("client_id")
	if identity.Role == auth.RoleClient && identity.UserID != clientID {
		return httpError(auth.ErrNotAuthorized)
	}

	conv, err := h.conversations.GetOrCreate(c.Request().Context(), clientID, identity.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) List(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	summaries, err := h.conversations.ListForUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *ConversationHandler) Get(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	id := c.Param("id")
	if err := h.requireAccess(c, identity, id); err != nil {
		return err
	}
	conv, err := h.conversations.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	id := c.Param("id")
	if err := h.requireAccess(c, identity, id); err != nil {
		return err
	}
	messages, err := h.conversations.ListMessages(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

type postMessageRequest struct {
	Content     string                    `json:"content"`
	Attachments []conversation.Attachment `json:"attachments"`
}

func (h *ConversationHandler) PostMessage(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	id := c.Param("id")
	if err := h.requireAccess(c, identity, id); err != nil {
		return err
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Attachments) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "content or attachments is required")
	}

	msg, err := h.conversations.AppendMessage(c.Request().Context(), conversation.AppendInput{
		ConversationID: id,
		SenderID:       identity.UserID,
		Type:           conversation.TypeUser,
		Content:        req.Content,
		Attachments:    req.Attachments,
		SourceType:     conversation.SourceChat,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ConversationHandler) MarkRead(c echo.Context) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return httpError(err)
	}
	id := c.Param("id")
	if err := h.requireAccess(c, identity, id); err != nil {
		return err
	}
	if err := h.conversations.MarkRead(c.Request().Context(), id, identity.UserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireAccess admits participants and admins.
func (h *ConversationHandler) requireAccess(c echo.Context, identity auth.Identity, conversationID string) error {
	if identity.Role == auth.RoleAdmin {
		return nil
	}
	ok, err := h.conversations.IsParticipant(c.Request().Context(), conversationID, identity.UserID)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return httpError(auth.ErrNotAuthorized)
	}
	return nil
}
