package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/opsboard/opsboard-backend/internal/realtime"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Clients only ever send small
	// keep-alive frames.
	maxMessageSize = 512
)

// Client drains one stream connection's outbound channel onto a websocket.
// All fan-out, filtering, heartbeat and staleness logic lives in the
// realtime package; this is purely the wire adapter.
type Client struct {
	conn     *websocket.Conn
	stream   *realtime.Connection
	registry *realtime.Registry
	logger   *slog.Logger
}

// NewClient wires a websocket to a registered stream connection.
func NewClient(conn *websocket.Conn, stream *realtime.Connection, registry *realtime.Registry, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		stream:   stream,
		registry: registry,
		logger:   logger.With("connection_id", stream.ID().String()),
	}
}

// WritePump pumps messages from the stream connection to the websocket.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		msg, open := <-c.stream.Outbound()

		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			c.logger.Error("failed to set write deadline", "error", err)
			return
		}

		if !open {
			// The registry closed the outbound path. Send close message.
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				c.logger.Debug("failed to send close message", "error", err)
			}
			return
		}

		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Debug("websocket write failed, removing connection", "error", err)
			c.registry.Remove(c.stream.ID())
			return
		}
	}
}

// ReadPump consumes inbound frames until the peer goes away. Any frame a
// client sends counts as activity for staleness tracking.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Remove(c.stream.ID())
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		c.stream.Touch()
	}
}
