package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/pkg/world"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRequestQueued     EventType = "request.queued"
	EventTypeRequestProcessing EventType = "request.processing"
	EventTypeRequestCompleted  EventType = "request.completed"
	EventTypeRequestFailed     EventType = "request.failed"
)

// AllChannel receives every event regardless of character.
const AllChannel = "npc-events"

const publishTimeout = 500 * time.Millisecond

// Event represents a generic event structure
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	RequestID   string         `json:"request_id,omitempty"`
	CharacterID string         `json:"character_id,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	At          time.Time      `json:"at"`
}

// NewEvent builds an event with a fresh ID. The character is taken from the
// payload's "character_id" when present.
func NewEvent(t EventType, data map[string]any) Event {
	e := Event{
		ID:   uuid.New().String(),
		Type: t,
		Data: data,
		At:   time.Now().UTC(),
	}
	if id, ok := data["character_id"].(string); ok {
		e.CharacterID = id
	}
	return e
}

// CharacterChannel is the channel carrying one character's events.
func CharacterChannel(characterID string) string {
	return fmt.Sprintf("%s:%s", AllChannel, characterID)
}

// Broadcaster publishes events to Redis Pub/Sub. It is a world.EventSink.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ world.EventSink = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// FireEvent publishes a world event. Failures are logged, never returned.
func (b *Broadcaster) FireEvent(ctx context.Context, name string, payload map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	_ = b.Publish(ctx, NewEvent(EventType(name), payload))
}

// PublishRequestQueued publishes a request.queued event
func (b *Broadcaster) PublishRequestQueued(ctx context.Context, characterID, requestID, requestType string) error {
	e := NewEvent(EventTypeRequestQueued, map[string]any{
		"status": "queued",
		"type":   requestType,
	})
	e.CharacterID = characterID
	e.RequestID = requestID
	return b.Publish(ctx, e)
}

// PublishRequestProcessing publishes a request.processing event
func (b *Broadcaster) PublishRequestProcessing(ctx context.Context, characterID, requestID, requestType, message string) error {
	e := NewEvent(EventTypeRequestProcessing, map[string]any{
		"status":  "processing",
		"type":    requestType,
		"message": message,
	})
	e.CharacterID = characterID
	e.RequestID = requestID
	return b.Publish(ctx, e)
}

// PublishRequestCompleted publishes a request.completed event
func (b *Broadcaster) PublishRequestCompleted(ctx context.Context, characterID, requestID string, result map[string]any) error {
	e := NewEvent(EventTypeRequestCompleted, map[string]any{
		"status": "completed",
		"result": result,
	})
	e.CharacterID = characterID
	e.RequestID = requestID
	return b.Publish(ctx, e)
}

// PublishRequestFailed publishes a request.failed event
func (b *Broadcaster) PublishRequestFailed(ctx context.Context, characterID, requestID, errorMsg string) error {
	e := NewEvent(EventTypeRequestFailed, map[string]any{
		"status": "failed",
		"error":  errorMsg,
	})
	e.CharacterID = characterID
	e.RequestID = requestID
	return b.Publish(ctx, e)
}

// Publish sends an event to the shared channel and, when it names a
// character, to that character's channel.
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channels := []string{AllChannel}
	if event.CharacterID != "" {
		channels = append(channels, CharacterChannel(event.CharacterID))
	}
	for _, channel := range channels {
		if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
			b.logger.Error("Failed to publish event", "error", err, "channel", channel)
			return fmt.Errorf("failed to publish event: %w", err)
		}
	}

	b.logger.Debug("Event published",
		"event_type", event.Type,
		"character_id", event.CharacterID,
		"request_id", event.RequestID,
	)
	return nil
}

// Subscribe streams events for one character, or for everyone when
// characterID is empty. The channel closes when ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, characterID string) (<-chan Event, error) {
	channel := AllChannel
	if characterID != "" {
		channel = CharacterChannel(characterID)
	}
	sub := b.redisClient.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.logger.Warn("Dropping undecodable event", "error", err, "channel", channel)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
