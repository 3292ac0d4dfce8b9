package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	wsAdapter "github.com/opsboard/opsboard-backend/internal/adapters/primary/websocket"
	"github.com/opsboard/opsboard-backend/internal/config"
	"github.com/opsboard/opsboard-backend/internal/core/ports"
	"github.com/opsboard/opsboard-backend/internal/realtime"
)

// WebSocketHandler upgrades requests onto the same stream core the SSE
// endpoint uses. Some dashboard deployments sit behind proxies that buffer
// SSE; websocket is the fallback transport for those.
type WebSocketHandler struct {
	registry  *realtime.Registry
	statsRepo ports.StatsRepository
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	registry *realtime.Registry,
	statsRepo ports.StatsRepository,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		registry:  registry,
		statsRepo: statsRepo,
		logger:    logger,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		// Check against allowed origins
		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	// 1. Parse the subscription filter before touching any stream state
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.logger.Warn("websocket connection rejected: invalid filter",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		http.Error(w, "Invalid subscription filter", http.StatusBadRequest)
		return
	}

	// 2. Read the stats snapshot the client initializes from
	stats, err := h.statsRepo.GetTaskStats(r.Context())
	if err != nil {
		h.logger.Error("failed to load initial stats",
			"request_id", requestID,
			"error", err,
		)
		http.Error(w, "Failed to load initial stats", http.StatusInternalServerError)
		return
	}

	// 3. Upgrade the connection
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	// 4. Register the stream connection and send the connect preamble
	stream := h.registry.Register(filter)

	if err := conn.WriteJSON(realtime.NewConnectionAck(stream)); err != nil {
		h.registry.Remove(stream.ID())
		_ = conn.Close()
		return
	}
	if err := conn.WriteJSON(realtime.NewInitialStats(stats)); err != nil {
		h.registry.Remove(stream.ID())
		_ = conn.Close()
		return
	}

	h.logger.Info("websocket stream established",
		"request_id", requestID,
		"connection_id", stream.ID(),
		"remote_addr", r.RemoteAddr,
	)

	// 5. Start the I/O pumps in new goroutines
	client := wsAdapter.NewClient(conn, stream, h.registry, h.logger)
	go client.WritePump()
	go client.ReadPump()
}
