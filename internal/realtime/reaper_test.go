package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
)

func backdate(conn *Connection, by time.Duration) {
	conn.mu.Lock()
	conn.lastActivity = time.Now().UTC().Add(-by)
	conn.mu.Unlock()
}

func TestReaper_ReapStale(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())
	reaper := NewReaper(r, b, 30*time.Second, 5*time.Minute, testLogger())

	fresh := r.Register(domain.SubscriptionFilter{})
	stale := r.Register(domain.SubscriptionFilter{})
	backdate(stale, 6*time.Minute)

	reaper.ReapStale()

	require.Equal(t, 1, r.Size())
	snap := r.Snapshot()
	assert.Equal(t, fresh.ID(), snap[0].ID())

	_, open := <-stale.Outbound()
	assert.False(t, open)
}

func TestReaper_HeartbeatKeepsDrainedConnectionAlive(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())
	reaper := NewReaper(r, b, 30*time.Second, 5*time.Minute, testLogger())

	conn := r.Register(domain.SubscriptionFilter{})
	backdate(conn, 4*time.Minute)

	// A delivered heartbeat counts as activity, so the next staleness sweep
	// leaves the connection alone.
	b.Ping(time.Now().UTC())
	reaper.ReapStale()

	assert.Equal(t, 1, r.Size())
	assert.Equal(t, MessageHeartbeat, drainOne(t, conn).Type)
}

func TestReaper_RunDeliversHeartbeatsUntilCancelled(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())
	reaper := NewReaper(r, b, 10*time.Millisecond, time.Minute, testLogger())

	conn := r.Register(domain.SubscriptionFilter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	select {
	case msg := <-conn.Outbound():
		assert.Equal(t, MessageHeartbeat, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on cancel")
	}
}
