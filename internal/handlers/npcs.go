package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	queuePkg "github.com/jwebster45206/npc-engine/pkg/queue"
	"github.com/jwebster45206/npc-engine/pkg/response"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const maxBodyBytes = 64 << 10

// RequestEnqueuer hands requests to the workers.
type RequestEnqueuer interface {
	EnqueueRequest(ctx context.Context, req *queuePkg.Request) error
}

// QueuedPublisher announces accepted requests.
type QueuedPublisher interface {
	PublishRequestQueued(ctx context.Context, characterID, requestID, requestType string) error
}

// MessageRequest is the body of POST /v1/npcs/{id}/messages.
type MessageRequest struct {
	SpeakerID string `json:"speaker_id"`
	Message   string `json:"message"`
}

// AcceptedResponse is returned for every queued request.
type AcceptedResponse struct {
	RequestID   string               `json:"request_id"`
	Type        queuePkg.RequestType `json:"type"`
	CharacterID string               `json:"character_id"`
}

// NPCHandler serves character views and accepts requests for the workers.
//
//	GET  /v1/npcs
//	GET  /v1/npcs/{id}
//	POST /v1/npcs/{id}/messages
//	POST /v1/npcs/{id}/decisions
//	POST /v1/npcs/{id}/complete
type NPCHandler struct {
	store     storage.Storage
	requests  RequestEnqueuer
	publisher QueuedPublisher
	logger    *slog.Logger
}

// NewNPCHandler builds the handler. publisher may be nil.
func NewNPCHandler(store storage.Storage, requests RequestEnqueuer, publisher QueuedPublisher, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		store:     store,
		requests:  requests,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "v1" || parts[1] != "npcs" || len(parts) > 4 {
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
		return
	}

	switch len(parts) {
	case 2:
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w, r, "GET")
			return
		}
		h.list(w, r)
	case 3:
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w, r, "GET")
			return
		}
		h.get(w, r, parts[2])
	case 4:
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.submit(w, r, parts[2], parts[3])
	}
}

func (h *NPCHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for npc endpoint",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)
	w.Header().Set("Allow", allowed)
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only "+allowed+" is supported.")
}

func (h *NPCHandler) list(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListCharacters(r.Context())
	if err != nil {
		h.logger.Error("Failed to list characters", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list characters.")
		return
	}

	records := make([]storage.CharacterRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := h.store.LoadCharacter(r.Context(), id)
		if err != nil {
			h.logger.Error("Failed to load character", "error", err, "character_id", id)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load characters.")
			return
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	writeJSON(w, h.logger, http.StatusOK, records)
}

func (h *NPCHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, ok := h.load(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, rec)
}

// load writes the error response itself and reports whether to continue.
func (h *NPCHandler) load(w http.ResponseWriter, r *http.Request, id string) (*storage.CharacterRecord, bool) {
	rec, err := h.store.LoadCharacter(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load character", "error", err, "character_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character.")
		return nil, false
	}
	if rec == nil {
		writeError(w, h.logger, http.StatusNotFound, "Unknown character: "+id)
		return nil, false
	}
	return rec, true
}

func (h *NPCHandler) submit(w http.ResponseWriter, r *http.Request, id, action string) {
	if _, ok := h.load(w, r, id); !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Failed to read request body.")
		return
	}

	var req *queuePkg.Request
	switch action {
	case "messages":
		var msg MessageRequest
		if err := json.Unmarshal(body, &msg); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'speaker_id' and 'message' fields.")
			return
		}
		if msg.SpeakerID == "" {
			writeError(w, h.logger, http.StatusBadRequest, "speaker_id is required.")
			return
		}
		if _, ok := h.load(w, r, msg.SpeakerID); !ok {
			return
		}
		req = queuePkg.NewMessageRequest(id, msg.SpeakerID, msg.Message)

	case "decisions":
		decided, err := response.ParseResponse(body)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		req, err = queuePkg.NewDecisionRequest(id, decided)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}

	case "complete":
		req = queuePkg.NewRequest(queuePkg.RequestTypeComplete, id)

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown action: "+action)
		return
	}

	if err := h.requests.EnqueueRequest(r.Context(), req); err != nil {
		h.logger.Error("Failed to enqueue request", "error", err, "character_id", id, "type", req.Type)
		writeError(w, h.logger, http.StatusServiceUnavailable, "Failed to queue request.")
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishRequestQueued(r.Context(), id, req.RequestID, string(req.Type)); err != nil {
			h.logger.Warn("Failed to publish queued event", "error", err, "request_id", req.RequestID)
		}
	}

	h.logger.Info("Request queued",
		"request_id", req.RequestID,
		"character_id", id,
		"type", req.Type)
	writeJSON(w, h.logger, http.StatusAccepted, AcceptedResponse{
		RequestID:   req.RequestID,
		Type:        req.Type,
		CharacterID: id,
	})
}
