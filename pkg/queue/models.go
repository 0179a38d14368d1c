package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/conversation"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeMessage asks a character to answer something said to it
	RequestTypeMessage RequestType = "message"

	// RequestTypeDecision carries a decided response for a character to apply
	RequestTypeDecision RequestType = "decision"

	// RequestTypeComplete reports that a character's active action finished
	RequestTypeComplete RequestType = "complete"
)

// Request represents a unified request in the queue
type Request struct {
	RequestID   string      `json:"request_id"`
	Type        RequestType `json:"type"`
	CharacterID string      `json:"character_id"`

	// Message-specific fields
	SpeakerID string `json:"speaker_id,omitempty"`
	Message   string `json:"message,omitempty"`

	// Decision-specific fields
	Response json.RawMessage `json:"response,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewRequest creates a request with a fresh ID.
func NewRequest(t RequestType, characterID string) *Request {
	return &Request{
		RequestID:   uuid.New().String(),
		Type:        t,
		CharacterID: characterID,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// NewMessageRequest asks characterID to answer message from speakerID.
func NewMessageRequest(characterID, speakerID, message string) *Request {
	r := NewRequest(RequestTypeMessage, characterID)
	r.SpeakerID = speakerID
	r.Message = message
	return r
}

// NewDecisionRequest wraps a decided response. response must marshal to
// JSON.
func NewDecisionRequest(characterID string, response any) (*Request, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	r := NewRequest(RequestTypeDecision, characterID)
	r.Response = data
	return r, nil
}

// Validate checks that the request carries what its type needs.
func (r *Request) Validate() error {
	if r.CharacterID == "" {
		return errors.New("request has no character")
	}
	switch r.Type {
	case RequestTypeMessage, RequestTypeComplete:
		return nil
	case RequestTypeDecision:
		if len(r.Response) == 0 {
			return errors.New("decision request has no response")
		}
		return nil
	default:
		return fmt.Errorf("unknown request type: %q", r.Type)
	}
}

// LockKeys lists what a worker must hold while processing the request: the
// character and, for messages, the conversation pair.
func (r *Request) LockKeys() []string {
	keys := []string{"npc-lock:" + r.CharacterID}
	if r.Type == RequestTypeMessage && r.SpeakerID != "" && r.SpeakerID != r.CharacterID {
		keys = append(keys, "conversation-lock:"+conversation.Key(r.CharacterID, r.SpeakerID))
	}
	return keys
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
