package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/opsboard-backend/internal/core/domain"
)

// MessageType discriminates the frames written to a stream client.
type MessageType string

const (
	MessageConnection   MessageType = "connection"
	MessageInitialStats MessageType = "initial_stats"
	MessageTaskEvent    MessageType = "task_event"
	MessageHeartbeat    MessageType = "heartbeat"
)

// Message is one frame queued on a connection's outbound path. Only live
// delta frames (task events and heartbeats) travel through the queue; the
// connection acknowledgement and initial stats are written synchronously by
// the transport during connect.
type Message struct {
	Type      MessageType
	Event     *domain.TaskEvent
	Timestamp time.Time
}

// NewEventMessage wraps a task event for delivery.
func NewEventMessage(event domain.TaskEvent) Message {
	return Message{Type: MessageTaskEvent, Event: &event}
}

// NewHeartbeatMessage builds a synthetic liveness frame.
func NewHeartbeatMessage(at time.Time) Message {
	return Message{Type: MessageHeartbeat, Timestamp: at}
}

// MarshalJSON renders the wire shape: a task_event frame is the event body
// with the type discriminator inlined, a heartbeat carries only a timestamp.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Type {
	case MessageTaskEvent:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
			*domain.TaskEvent
		}{m.Type, m.Event})
	case MessageHeartbeat:
		return json.Marshal(struct {
			Type      MessageType `json:"type"`
			Timestamp time.Time   `json:"timestamp"`
		}{m.Type, m.Timestamp})
	default:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
		}{m.Type})
	}
}

// ConnectionAck is the first frame written on a freshly opened stream. It
// echoes the assigned connection ID and the parsed filter back to the client.
type ConnectionAck struct {
	Type         MessageType               `json:"type"`
	ConnectionID uuid.UUID                 `json:"connectionId"`
	Filter       domain.SubscriptionFilter `json:"filter"`
}

// NewConnectionAck builds the acknowledgement frame for a connection.
func NewConnectionAck(c *Connection) ConnectionAck {
	return ConnectionAck{
		Type:         MessageConnection,
		ConnectionID: c.ID(),
		Filter:       c.Filter(),
	}
}

// InitialStats is the aggregate snapshot frame sent right after the
// acknowledgement, so the client can initialize its view before deltas.
type InitialStats struct {
	Type  MessageType       `json:"type"`
	Stats *domain.TaskStats `json:"stats"`
}

// NewInitialStats wraps a stats snapshot for the wire.
func NewInitialStats(stats *domain.TaskStats) InitialStats {
	return InitialStats{Type: MessageInitialStats, Stats: stats}
}
