package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
	"github.com/opsboard/opsboard-backend/internal/core/ports"
)

func drainOne(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case msg := <-conn.Outbound():
		return msg
	default:
		t.Fatal("expected a queued message")
		return Message{}
	}
}

func assertEmpty(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case msg := <-conn.Outbound():
		t.Fatalf("unexpected message %q queued", msg.Type)
	default:
	}
}

func TestBroadcaster_EmitRespectsFilters(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())

	design := r.Register(domain.SubscriptionFilter{Departments: []string{"design"}})
	ops := r.Register(domain.SubscriptionFilter{Departments: []string{"ops"}})
	all := r.Register(domain.SubscriptionFilter{})

	err := b.Emit(ports.EmitParams{
		Kind:         domain.EventTaskCreated,
		TaskID:       7,
		DepartmentID: "design",
	})
	require.NoError(t, err)

	got := drainOne(t, design)
	assert.Equal(t, MessageTaskEvent, got.Type)
	require.NotNil(t, got.Event)
	assert.Equal(t, domain.EventTaskCreated, got.Event.Kind)
	assert.Equal(t, int64(7), got.Event.TaskID)
	assert.False(t, got.Event.OccurredAt.IsZero())

	assertEmpty(t, ops)

	assert.Equal(t, MessageTaskEvent, drainOne(t, all).Type)
	assert.Equal(t, 3, r.Size())
}

func TestBroadcaster_EmitRejectsUnknownKind(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())
	conn := r.Register(domain.SubscriptionFilter{})

	err := b.Emit(ports.EmitParams{Kind: "renamed", TaskID: 1, DepartmentID: "design"})

	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
	assertEmpty(t, conn)
}

func TestBroadcaster_PerConnectionOrdering(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())
	conn := r.Register(domain.SubscriptionFilter{})

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, b.Emit(ports.EmitParams{
			Kind:         domain.EventTaskProgress,
			TaskID:       i,
			DepartmentID: "design",
		}))
	}

	for i := int64(1); i <= 3; i++ {
		msg := drainOne(t, conn)
		assert.Equal(t, i, msg.Event.TaskID)
	}
}

func TestBroadcaster_EvictsSlowConsumerMidSweep(t *testing.T) {
	r := NewRegistry(1, testLogger())
	b := NewBroadcaster(r, testLogger())

	slow := r.Register(domain.SubscriptionFilter{})
	healthy := r.Register(domain.SubscriptionFilter{})

	// Saturate the slow consumer's outbound buffer without draining it.
	require.NoError(t, slow.TrySend(NewHeartbeatMessage(time.Now())))

	require.NoError(t, b.Emit(ports.EmitParams{
		Kind:         domain.EventTaskUpdated,
		TaskID:       9,
		DepartmentID: "ops",
	}))

	// The slow consumer is gone; the healthy one still got the event.
	assert.Equal(t, 1, r.Size())
	msg := drainOne(t, healthy)
	assert.Equal(t, int64(9), msg.Event.TaskID)

	// Its outbound was closed by removal after the buffered frame drains.
	<-slow.Outbound()
	_, open := <-slow.Outbound()
	assert.False(t, open)
}

func TestBroadcaster_PingReachesEveryFilter(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())

	filtered := r.Register(domain.SubscriptionFilter{
		Departments: []string{"design"},
		Assignees:   []uuid.UUID{uuid.New()},
		Kinds:       []domain.EventKind{domain.EventTaskComment},
	})

	at := time.Now().UTC()
	b.Ping(at)

	msg := drainOne(t, filtered)
	assert.Equal(t, MessageHeartbeat, msg.Type)
	assert.Equal(t, at, msg.Timestamp)
}

func TestBroadcaster_PingAdvancesLastActivity(t *testing.T) {
	r := NewRegistry(8, testLogger())
	b := NewBroadcaster(r, testLogger())
	conn := r.Register(domain.SubscriptionFilter{})

	before := conn.LastActivity()
	time.Sleep(5 * time.Millisecond)
	b.Ping(time.Now().UTC())

	assert.True(t, conn.LastActivity().After(before))
}
