package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
	"github.com/opsboard/opsboard-backend/internal/core/ports"
)

// Broadcaster fans frames out to registered connections. Delivery is best
// effort and at most once per connection: a full or closed outbound path gets
// the connection removed, never retried, and never blocks delivery to the
// others.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger

	// mu serializes sweeps: events are processed one at a time, which is
	// what preserves per-connection delivery order under concurrent Emits.
	mu sync.Mutex
}

// Ensure Broadcaster implements the EventPublisher port.
var _ ports.EventPublisher = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logger.With("component", "broadcaster"),
	}
}

// Emit is the producer entry point. It validates the event kind, stamps the
// emission time and runs one fan-out sweep. The sweep is synchronous but
// never waits on an individual consumer beyond the non-blocking enqueue.
func (b *Broadcaster) Emit(params ports.EmitParams) error {
	if _, err := domain.ParseEventKind(string(params.Kind)); err != nil {
		return err
	}

	event := domain.TaskEvent{
		Kind:         params.Kind,
		TaskID:       params.TaskID,
		DepartmentID: params.DepartmentID,
		AssigneeID:   params.AssigneeID,
		Payload:      params.Payload,
		OccurredAt:   time.Now().UTC(),
	}

	delivered := b.sweep(NewEventMessage(event), func(c *Connection) bool {
		return c.Filter().Matches(event)
	})

	b.logger.Debug("broadcast complete",
		"kind", event.Kind,
		"task_id", event.TaskID,
		"department_id", event.DepartmentID,
		"delivered", delivered,
	)
	return nil
}

// Ping pushes a synthetic liveness frame to every connection through the
// same delivery path broadcast uses, with the same failure handling.
func (b *Broadcaster) Ping(at time.Time) {
	delivered := b.sweep(NewHeartbeatMessage(at), nil)
	b.logger.Debug("heartbeat complete", "delivered", delivered)
}

// sweep delivers one frame to every connection accepted by matches (nil
// means all). Connections that cannot take the frame are removed mid-sweep
// without aborting delivery to the rest.
func (b *Broadcaster) sweep(msg Message, matches func(*Connection) bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, conn := range b.registry.Snapshot() {
		if matches != nil && !matches(conn) {
			continue
		}

		if err := conn.TrySend(msg); err != nil {
			// A consumer that cannot take the next frame is dead weight;
			// disconnect it and keep sweeping.
			b.logger.Warn("removing unresponsive connection",
				"connection_id", conn.ID(),
				"error", err,
			)
			b.registry.Remove(conn.ID())
			continue
		}
		delivered++
	}
	return delivered
}
