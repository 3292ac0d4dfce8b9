package http

import (
	"net/http"

	"github.com/opsboard/opsboard-backend/internal/realtime"
)

// StatsHandler exposes operational visibility into the stream registry. It
// is meant for operators, not end-user dashboard clients.
type StatsHandler struct {
	registry *realtime.Registry
}

// NewStatsHandler creates a new stream stats handler
func NewStatsHandler(registry *realtime.Registry) *StatsHandler {
	return &StatsHandler{registry: registry}
}

// StreamStatsResponse reports the current connection count and per-connection
// details.
type StreamStatsResponse struct {
	ConnectionCount int                       `json:"connectionCount"`
	Connections     []realtime.ConnectionInfo `json:"connections"`
}

// HandleStats returns the live connection inventory.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.Info()

	WriteJSON(w, http.StatusOK, StreamStatsResponse{
		ConnectionCount: len(infos),
		Connections:     infos,
	})
}
