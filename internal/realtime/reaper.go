package realtime

import (
	"context"
	"log/slog"
	"time"
)

// Reaper is the maintenance side of the stream subsystem. On a fixed period
// it pushes a liveness ping through every connection's normal delivery path,
// and on a coarser period it evicts connections that have shown no activity
// within the staleness window. Both sweeps run concurrently with
// registration, removal and broadcast; each per-connection operation is
// independently fallible so one stuck connection cannot stall a tick.
type Reaper struct {
	registry          *Registry
	broadcaster       *Broadcaster
	heartbeatInterval time.Duration
	staleTimeout      time.Duration
	sweepInterval     time.Duration
	logger            *slog.Logger
}

// NewReaper creates a reaper. Heartbeats are delivered through the
// broadcaster so they share the event delivery path and failure handling.
// The staleness sweep runs once per staleTimeout, which with the defaults is
// 10x the heartbeat period.
func NewReaper(registry *Registry, broadcaster *Broadcaster, heartbeatInterval, staleTimeout time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		registry:          registry,
		broadcaster:       broadcaster,
		heartbeatInterval: heartbeatInterval,
		staleTimeout:      staleTimeout,
		sweepInterval:     staleTimeout,
		logger:            logger.With("component", "stream_reaper"),
	}
}

// Run ticks until the context is cancelled. This MUST be run as a goroutine.
func (r *Reaper) Run(ctx context.Context) {
	heartbeat := time.NewTicker(r.heartbeatInterval)
	sweep := time.NewTicker(r.sweepInterval)
	defer heartbeat.Stop()
	defer sweep.Stop()

	r.logger.Info("reaper started",
		"heartbeat_interval", r.heartbeatInterval.String(),
		"stale_timeout", r.staleTimeout.String(),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-heartbeat.C:
			r.broadcaster.Ping(time.Now().UTC())
		case <-sweep.C:
			r.ReapStale()
		}
	}
}

// ReapStale evicts every connection whose last activity is older than the
// staleness window.
func (r *Reaper) ReapStale() {
	cutoff := time.Now().UTC().Add(-r.staleTimeout)

	for _, conn := range r.registry.Snapshot() {
		last := conn.LastActivity()
		if last.Before(cutoff) {
			r.logger.Info("reaping stale connection",
				"connection_id", conn.ID(),
				"last_activity", last,
			)
			r.registry.Remove(conn.ID())
		}
	}
}
