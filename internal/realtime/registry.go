package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/opsboard-backend/internal/core/domain"
)

// Registry maintains the set of active stream connections. Every mutating
// operation is synchronized independently; iteration works on a snapshot so
// broadcast and maintenance sweeps never hold the lock while delivering.
type Registry struct {
	// mu protects the conns map
	mu    sync.RWMutex
	conns map[uuid.UUID]*Connection

	bufferSize int
	logger     *slog.Logger
}

// NewRegistry creates a connection registry. bufferSize is the capacity of
// each connection's outbound delivery channel.
func NewRegistry(bufferSize int, logger *slog.Logger) *Registry {
	return &Registry{
		conns:      make(map[uuid.UUID]*Connection),
		bufferSize: bufferSize,
		logger:     logger.With("component", "stream_registry"),
	}
}

// Register allocates a new connection with the given filter and inserts it.
// It never fails: a duplicate ID (which the uuid space makes effectively
// impossible) is logged and regenerated rather than corrupting the map.
func (r *Registry) Register(filter domain.SubscriptionFilter) *Connection {
	conn := newConnection(filter, r.bufferSize)

	r.mu.Lock()
	for {
		if _, exists := r.conns[conn.id]; !exists {
			break
		}
		r.logger.Error("duplicate connection id generated, retrying", "connection_id", conn.id)
		conn.id = uuid.New()
	}
	r.conns[conn.id] = conn
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("connection registered",
		"connection_id", conn.id,
		"total_connections", total,
	)
	return conn
}

// Remove deletes a connection and closes its outbound path atomically.
// Removing an unknown ID is a no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
		conn.close()
	}
	total := len(r.conns)
	r.mu.Unlock()

	if ok {
		r.logger.Info("connection removed",
			"connection_id", id,
			"total_connections", total,
		)
	}
}

// Snapshot returns a point-in-time copy of the live connections for
// iteration. Mutations during iteration affect the map, not the copy.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Size returns the number of live connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ConnectionInfo describes one open connection for operational visibility.
type ConnectionInfo struct {
	ID            uuid.UUID                 `json:"id"`
	Filter        domain.SubscriptionFilter `json:"filter"`
	LastHeartbeat time.Time                 `json:"lastHeartbeat"`
	Age           string                    `json:"age"`
}

// Info returns per-connection details for the stats endpoint.
func (r *Registry) Info() []ConnectionInfo {
	now := time.Now().UTC()
	conns := r.Snapshot()

	infos := make([]ConnectionInfo, 0, len(conns))
	for _, conn := range conns {
		infos = append(infos, ConnectionInfo{
			ID:            conn.ID(),
			Filter:        conn.Filter(),
			LastHeartbeat: conn.LastActivity(),
			Age:           now.Sub(conn.ConnectedAt()).Round(time.Second).String(),
		})
	}
	return infos
}
