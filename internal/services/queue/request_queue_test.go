package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/jwebster45206/npc-engine/pkg/queue"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	client, err := NewClient(redisURL, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestRequestQueue_EnqueueAndDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRequestQueue(client)
	ctx := context.Background()

	reqs := []*queue.Request{
		queue.NewMessageRequest("alice", "bob", "Did you catch the game?"),
		queue.NewMessageRequest("bob", "alice", "Lunch?"),
		queue.NewRequest(queue.RequestTypeComplete, "alice"),
	}
	for _, r := range reqs {
		if err := q.EnqueueRequest(ctx, r); err != nil {
			t.Fatalf("Failed to enqueue request: %v", err)
		}
	}

	depth, err := q.RequestQueueDepth(ctx)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != len(reqs) {
		t.Errorf("Expected depth %d, got %d", len(reqs), depth)
	}

	for i, want := range reqs {
		got, err := q.DequeueRequest(ctx)
		if err != nil {
			t.Fatalf("Failed to dequeue: %v", err)
		}
		if got == nil || got.RequestID != want.RequestID {
			t.Errorf("Request %d out of order: expected %s, got %+v", i, want.RequestID, got)
		}
	}

	empty, err := q.DequeueRequest(ctx)
	if err != nil {
		t.Fatalf("Dequeue on empty queue failed: %v", err)
	}
	if empty != nil {
		t.Errorf("Expected nil from empty queue, got %+v", empty)
	}
}

func TestRequestQueue_RejectsInvalid(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRequestQueue(client)
	if err := q.EnqueueRequest(context.Background(), queue.NewRequest(queue.RequestTypeDecision, "alice")); err == nil {
		t.Error("Expected decision without response to be rejected")
	}
}

func TestRequestQueue_BlockingDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRequestQueue(client)
	ctx := context.Background()

	want := queue.NewMessageRequest("alice", "bob", "hello")
	if err := q.EnqueueRequest(ctx, want); err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}

	got, err := q.BlockingDequeueRequest(ctx, time.Second)
	if err != nil {
		t.Fatalf("Blocking dequeue failed: %v", err)
	}
	if got == nil || got.Message != "hello" {
		t.Errorf("Expected the queued message, got %+v", got)
	}
}

func TestRequestQueue_PeekAndClear(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRequestQueue(client)
	ctx := context.Background()
	for _, msg := range []string{"one", "two", "three"} {
		if err := q.EnqueueRequest(ctx, queue.NewMessageRequest("alice", "bob", msg)); err != nil {
			t.Fatalf("Failed to enqueue: %v", err)
		}
	}

	peeked, err := q.PeekRequests(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to peek: %v", err)
	}
	if len(peeked) != 2 || peeked[0].Message != "one" {
		t.Errorf("Unexpected peek result %+v", peeked)
	}
	depth, _ := q.RequestQueueDepth(ctx)
	if depth != 3 {
		t.Errorf("Peek removed requests: expected depth 3, got %d", depth)
	}

	if err := q.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	depth, _ = q.RequestQueueDepth(ctx)
	if depth != 0 {
		t.Errorf("Expected empty queue after clear, got depth %d", depth)
	}
}

func TestRequestQueue_DeadLetters(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	q := NewRequestQueue(client)
	ctx := context.Background()

	req := queue.NewMessageRequest("alice", "zed", "hi")
	if err := q.DeadLetter(ctx, req, "unknown character"); err != nil {
		t.Fatalf("Failed to dead-letter: %v", err)
	}

	letters, err := q.DeadLetters(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to read dead letters: %v", err)
	}
	if len(letters) != 1 || letters[0].Reason != "unknown character" || letters[0].Request.RequestID != req.RequestID {
		t.Errorf("Unexpected dead letters %+v", letters)
	}

	none, _ := q.DeadLetters(ctx, "bob")
	if len(none) != 0 {
		t.Errorf("Expected no dead letters for bob, got %d", len(none))
	}
}
