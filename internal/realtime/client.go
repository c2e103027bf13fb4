package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 64
)

// Control actions a connected client may send.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ControlMessage is the inbound frame format on the websocket.
type ControlMessage struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
}

// Client is one websocket connection belonging to an authenticated user.
type Client struct {
	UserID string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu        sync.Mutex
	following map[string]struct{}
	closed    bool
}

func NewClient(conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID:    userID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		following: make(map[string]struct{}),
	}
}

func (c *Client) track(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.following[conversationID] = struct{}{}
}

func (c *Client) untrack(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.following, conversationID)
}

func (c *Client) subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.following))
	for id := range c.following {
		ids = append(ids, id)
	}
	return ids
}

// Close marks the client dead once and signals the write pump to tear down
// the connection. The send channel is never closed: a publish racing a
// disconnect must not be able to send on a closed channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// deliver queues an event without blocking. Closed clients swallow the event;
// a false return means the buffer is full and the client should be dropped.
func (c *Client) deliver(data []byte) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump consumes control frames until the connection drops, invoking
// handle for each well-formed frame. It keeps the read deadline alive via
// pong handling.
func (c *Client) ReadPump(handle func(c *Client, msg ControlMessage)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if handle != nil {
			handle(c, msg)
		}
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
