package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 50 * time.Second
	readLimit    = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-mostly and carries no credentials, so any origin
	// may attach.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// control is the envelope clients send on the advance feed: follow one
// player's results, drop the subscription, or ping.
type control struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id,omitempty"`
}

// Client is one attached feed connection. The hub owns the send channel:
// it closes it on unregister, which tears the write loop down.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

// readLoop consumes control frames until the peer goes away, then
// unregisters the client.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read failed", "client_id", c.id, "error", err)
			}
			return
		}

		var frame control
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.reply(Message{Type: MessageTypeError, Data: map[string]string{"error": "invalid message format"}})
			continue
		}

		switch frame.Type {
		case MessageTypeSubscribe:
			if frame.PlayerID == "" {
				c.reply(Message{Type: MessageTypeError, Data: map[string]string{"error": "player_id required for subscribe"}})
				continue
			}
			c.hub.Subscribe(c, frame.PlayerID)
			c.reply(Message{Type: "subscribed", PlayerID: frame.PlayerID})

		case MessageTypeUnsubscribe:
			if frame.PlayerID != "" {
				c.hub.Unsubscribe(c, frame.PlayerID)
				c.reply(Message{Type: "unsubscribed", PlayerID: frame.PlayerID})
			}

		case MessageTypePing:
			c.reply(Message{Type: MessageTypePong})

		default:
			c.logger.Debug("unknown message type", "client_id", c.id, "type", frame.Type)
		}
	}
}

// writeLoop drains the send channel onto the connection, one frame per
// message, and keeps the peer alive with periodic pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply enqueues a direct response, dropping it when the client's buffer
// is full. A slow client loses acks before it loses the connection.
func (c *Client) reply(msg Message) {
	msg.Timestamp = time.Now()
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal reply", "client_id", c.id, "error", err)
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// ServeWs upgrades the request and attaches the connection to the feed.
func ServeWs(hub *Hub, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
	hub.Register(client)

	go client.writeLoop()
	go client.readLoop()
}
