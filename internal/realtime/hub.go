// Package realtime fans conversation events out to websocket subscribers.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is the wire envelope pushed to subscribers.
type Event struct {
	ConversationID string    `json:"conversation_id"`
	Event          string    `json:"event"`
	Payload        any       `json:"payload"`
	At             time.Time `json:"at"`
}

// Hub routes events to clients by conversation id. Publishing never blocks:
// a subscriber that cannot keep up has its connection dropped.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Client]struct{}),
		logger: log.With(slog.String("service", "realtime")),
	}
}

// Publish delivers an event to every client subscribed to the conversation.
// Events for one conversation reach each subscriber in publish order.
func (h *Hub) Publish(conversationID, event string, payload any) {
	data, err := json.Marshal(Event{
		ConversationID: conversationID,
		Event:          event,
		Payload:        payload,
		At:             time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("event marshal failed",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.subs[conversationID]))
	for c := range h.subs[conversationID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if c.deliver(data) {
			continue
		}
		h.logger.Warn("slow subscriber dropped",
			slog.String("conversation_id", conversationID))
		h.Detach(c)
		c.Close()
	}
}

// Subscribe adds the client to a conversation's fan-out set. The caller is
// responsible for authorization.
func (h *Hub) Subscribe(c *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[conversationID]
	if !ok {
		set = make(map[*Client]struct{})
		h.subs[conversationID] = set
	}
	set[c] = struct{}{}
	c.track(conversationID)
}

// Unsubscribe removes one subscription.
func (h *Hub) Unsubscribe(c *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c, conversationID)
	c.untrack(conversationID)
}

// Detach removes the client from every conversation it follows.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range c.subscriptions() {
		h.remove(c, id)
		c.untrack(id)
	}
}

// SubscriberCount reports how many clients follow a conversation.
func (h *Hub) SubscriberCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}

func (h *Hub) remove(c *Client, conversationID string) {
	if set, ok := h.subs[conversationID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, conversationID)
		}
	}
}
