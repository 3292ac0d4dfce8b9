package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
	apperrors "github.com/opsboard/opsboard-backend/internal/core/errors"
	"github.com/opsboard/opsboard-backend/internal/core/ports"
	"github.com/opsboard/opsboard-backend/internal/infrastructure/logging"
	"github.com/opsboard/opsboard-backend/internal/realtime"
)

// StreamHandler serves the long-lived Server-Sent Events endpoint. It is a
// pure transport adapter: filter parsing and the connect preamble happen
// here, everything after that is draining the connection's outbound channel
// onto the wire.
type StreamHandler struct {
	registry     *realtime.Registry
	statsRepo    ports.StatsRepository
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewStreamHandler creates a new SSE stream handler
func NewStreamHandler(
	registry *realtime.Registry,
	statsRepo ports.StatsRepository,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *StreamHandler {
	return &StreamHandler{
		registry:     registry,
		statsRepo:    statsRepo,
		errorHandler: errorHandler,
		logger:       logger.With("component", "stream_handler"),
	}
}

// HandleStream opens an event stream for one client.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, err.Error()))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(errors.New("response writer does not support streaming")))
		return
	}

	conn := h.registry.Register(filter)
	defer h.registry.Remove(conn.ID())

	ctx := logging.WithConnectionID(r.Context(), conn.ID().String())

	stats, err := h.statsRepo.GetTaskStats(ctx)
	if err != nil {
		// Headers are not written yet, so the client sees a clean failure
		// instead of a half-open stream.
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, realtime.NewConnectionAck(conn)); err != nil {
		return
	}
	if err := writeSSE(w, realtime.NewInitialStats(stats)); err != nil {
		return
	}
	flusher.Flush()

	h.logger.InfoContext(ctx, "stream opened", "remote_addr", r.RemoteAddr)

	for {
		select {
		case msg, open := <-conn.Outbound():
			if !open {
				// Removed by the broadcaster or reaped; the client contract
				// is to reconnect and re-fetch initial_stats.
				h.logger.InfoContext(ctx, "stream closed by server")
				return
			}
			if err := writeSSE(w, msg); err != nil {
				h.logger.DebugContext(ctx, "stream write failed", "error", err)
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			h.logger.InfoContext(ctx, "client disconnected")
			return
		}
	}
}

// writeSSE frames one message as `data: <JSON>\n\n`.
func writeSSE(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// parseFilter builds a subscription filter from the comma-separated query
// parameters. A missing parameter means an empty dimension, i.e. "all".
func parseFilter(query url.Values) (domain.SubscriptionFilter, error) {
	return domain.NewSubscriptionFilter(
		splitParam(query.Get("departments")),
		splitParam(query.Get("assignees")),
		splitParam(query.Get("kinds")),
	)
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
