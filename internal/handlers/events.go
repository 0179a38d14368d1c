package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/internal/services/events"
)

const keepaliveInterval = 30 * time.Second

// EventSubscriber streams published events. An empty character id follows
// the whole office.
type EventSubscriber interface {
	Subscribe(ctx context.Context, characterID string) (<-chan events.Event, error)
}

// EventsHandler handles Server-Sent Events (SSE) for worker updates
type EventsHandler struct {
	subscriber EventSubscriber
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber EventSubscriber, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		logger:     logger,
	}
}

// ServeHTTP handles SSE requests
// GET /v1/events
// GET /v1/events/npcs/{characterID}
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for events endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	characterID := ""
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(pathParts) == 2 && pathParts[0] == "v1" && pathParts[1] == "events":
	case len(pathParts) == 4 && pathParts[0] == "v1" && pathParts[1] == "events" && pathParts[2] == "npcs" && pathParts[3] != "":
		characterID = pathParts[3]
	default:
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/events or /v1/events/npcs/{characterID}")
		return
	}

	stream, err := h.subscriber.Subscribe(r.Context(), characterID)
	if err != nil {
		h.logger.Error("Failed to subscribe", "error", err, "character_id", characterID)
		writeError(w, h.logger, http.StatusServiceUnavailable, "Event stream unavailable.")
		return
	}

	h.logger.Info("SSE connection established",
		"character_id", characterID,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	keepaliveTicker := time.NewTicker(keepaliveInterval)
	defer keepaliveTicker.Stop()

	h.sendSSE(w, "connected", map[string]any{
		"character_id": characterID,
		"message":      "Connected to event stream",
	})

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "character_id", characterID)
			return

		case event, ok := <-stream:
			if !ok {
				return
			}
			h.sendSSE(w, string(event.Type), event)

		case <-keepaliveTicker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				h.logger.Error("Failed to write keepalive", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// sendSSE sends a Server-Sent Event to the client
func (h *EventsHandler) sendSSE(w http.ResponseWriter, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		h.logger.Error("Failed to write event", "error", err)
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
