package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsboard/opsboard-backend/internal/core/domain"
	apperrors "github.com/opsboard/opsboard-backend/internal/core/errors"
)

// Connection is the server-side handle for one open client stream. It is
// owned by the Registry while live; transports only drain Outbound and report
// activity. The outbound path is bounded so a slow transport can never stall
// a broadcast sweep.
type Connection struct {
	id          uuid.UUID
	filter      domain.SubscriptionFilter
	connectedAt time.Time
	outbound    chan Message

	// mu guards lastActivity and closed, and orders TrySend against close
	// so an enqueue never races a channel close.
	mu           sync.Mutex
	lastActivity time.Time
	closed       bool
}

func newConnection(filter domain.SubscriptionFilter, bufferSize int) *Connection {
	now := time.Now().UTC()
	return &Connection{
		id:           uuid.New(),
		filter:       filter,
		connectedAt:  now,
		lastActivity: now,
		outbound:     make(chan Message, bufferSize),
	}
}

// ID returns the connection's process-lifetime-unique identifier.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Filter returns the subscription filter supplied at connect time.
func (c *Connection) Filter() domain.SubscriptionFilter {
	return c.filter
}

// ConnectedAt returns when the connection was registered.
func (c *Connection) ConnectedAt() time.Time {
	return c.connectedAt
}

// Outbound is the delivery channel drained by the transport adapter. It is
// closed when the connection is removed from the registry.
func (c *Connection) Outbound() <-chan Message {
	return c.outbound
}

// LastActivity returns the time of the last successful delivery or touch.
func (c *Connection) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// Touch records activity on the connection. lastActivity never moves
// backwards.
func (c *Connection) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
}

func (c *Connection) touchLocked() {
	if now := time.Now().UTC(); now.After(c.lastActivity) {
		c.lastActivity = now
	}
}

// TrySend enqueues a message without blocking. A full buffer or a closed
// connection is reported to the caller, which treats the connection as dead.
// lastActivity advances only on success.
func (c *Connection) TrySend(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return apperrors.ErrConnectionClosed
	}

	select {
	case c.outbound <- msg:
		c.touchLocked()
		return nil
	default:
		return apperrors.ErrSendBufferFull
	}
}

// close shuts the outbound path exactly once. Called by the registry while
// it holds its own lock, so removal and close are atomic with respect to
// registry mutation.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.outbound)
}
