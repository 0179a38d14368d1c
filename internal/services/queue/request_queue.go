package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/pkg/queue"
)

const requestsKey = "npc-requests"

// DeadLetter is a request that could not be processed.
type DeadLetter struct {
	Request  *queue.Request `json:"request"`
	Reason   string         `json:"reason"`
	FailedAt time.Time      `json:"failed_at"`
}

// RequestQueue is the global FIFO of NPC requests, plus a per-character
// dead-letter list for requests that failed.
type RequestQueue struct {
	client *Client
}

func NewRequestQueue(client *Client) *RequestQueue {
	return &RequestQueue{
		client: client,
	}
}

func deadLetterKey(characterID string) string {
	return fmt.Sprintf("npc-dead-letters:%s", characterID)
}

// EnqueueRequest adds a request to the end of the queue
func (q *RequestQueue) EnqueueRequest(ctx context.Context, req *queue.Request) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// DequeueRequest removes and returns the next request.
// Returns nil if queue is empty
func (q *RequestQueue) DequeueRequest(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}
	return parseRequest(result)
}

// BlockingDequeueRequest waits up to timeout for a request. It returns nil
// when the wait times out.
func (q *RequestQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return parseRequest(result[1])
}

func parseRequest(data string) (*queue.Request, error) {
	req, err := queue.FromJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// PeekRequests returns queued requests without removing them. limit <= 0
// returns all of them.
func (q *RequestQueue) PeekRequests(ctx context.Context, limit int) ([]*queue.Request, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	raw, err := q.client.rdb.LRange(ctx, requestsKey, 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek requests: %w", err)
	}
	out := make([]*queue.Request, 0, len(raw))
	for _, r := range raw {
		req, err := parseRequest(r)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

// RequestQueueDepth returns the number of queued requests
func (q *RequestQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}

// Clear drops every queued request
func (q *RequestQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, requestsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear request queue: %w", err)
	}
	return nil
}

// DeadLetter records a failed request against its character
func (q *RequestQueue) DeadLetter(ctx context.Context, req *queue.Request, reason string) error {
	data, err := json.Marshal(DeadLetter{Request: req, Reason: reason, FailedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to serialize dead letter: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, deadLetterKey(req.CharacterID), data).Err(); err != nil {
		return fmt.Errorf("failed to record dead letter: %w", err)
	}
	return nil
}

// DeadLetters returns the failed requests recorded for a character
func (q *RequestQueue) DeadLetters(ctx context.Context, characterID string) ([]DeadLetter, error) {
	raw, err := q.client.rdb.LRange(ctx, deadLetterKey(characterID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			return nil, fmt.Errorf("failed to parse dead letter: %w", err)
		}
		out = append(out, dl)
	}
	return out, nil
}
