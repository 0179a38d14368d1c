package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/internal/app"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/npc-engine/pkg/queue"
	"github.com/jwebster45206/npc-engine/pkg/response"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const (
	workerTimeout = 5 * time.Second
	lockTTL       = 30 * time.Second
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker applies queued NPC requests to the engine
type Worker struct {
	id          string
	queue       *queue.RequestQueue
	engine      *app.Engine
	broadcaster *events.Broadcaster
	store       storage.Storage
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance. store may be nil, in which case
// character views are not published.
func New(requests *queue.RequestQueue, engine *app.Engine, broadcaster *events.Broadcaster, store storage.Storage, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       requests,
		engine:      engine,
		broadcaster: broadcaster,
		store:       store,
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the worker's lock owner id.
func (w *Worker) ID() string {
	return w.id
}

// Start processes requests until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)
	if err := w.SyncCharacters(w.ctx); err != nil {
		w.log.Warn("Failed to publish initial character views", "error", err, "worker_id", w.id)
	}

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeueRequest(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		return nil
	}

	log := logger.WithCharacter(logger.WithRequestID(w.log, req.RequestID), req.CharacterID)
	log.Info("Received request from queue", "worker_id", w.id, "type", req.Type)

	keys := req.LockKeys()
	locked, err := w.acquireLocks(keys)
	if err != nil {
		return fmt.Errorf("failed to acquire locks: %w", err)
	}
	if !locked {
		// another worker holds the character or the conversation
		log.Info("Character busy elsewhere, re-queueing request", "worker_id", w.id)
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}
	defer w.releaseLocks(keys)

	err = w.processRequest(log, req)
	w.saveCharacters(req.CharacterID, req.SpeakerID)
	return err
}

// acquireLocks takes every key or none of them.
func (w *Worker) acquireLocks(keys []string) (bool, error) {
	var held []string
	for _, key := range keys {
		ok, err := w.redisClient.SetNX(w.ctx, key, w.id, lockTTL).Result()
		if err != nil || !ok {
			w.releaseLocks(held)
			return false, err
		}
		held = append(held, key)
	}
	return true, nil
}

// releaseLocks deletes the keys this worker still owns.
func (w *Worker) releaseLocks(keys []string) {
	for _, key := range keys {
		if err := releaseScript.Run(context.WithoutCancel(w.ctx), w.redisClient, []string{key}, w.id).Err(); err != nil {
			w.log.Error("Failed to release lock", "error", err, "key", key)
		}
	}
}

func (w *Worker) processRequest(log *slog.Logger, req *queuePkg.Request) error {
	start := time.Now()

	if err := w.broadcaster.PublishRequestProcessing(w.ctx, req.CharacterID, req.RequestID, string(req.Type), req.Message); err != nil {
		log.Error("Failed to publish processing event", "error", err)
	}

	result, err := w.apply(req)
	if err != nil {
		log.Warn("Request failed", "error", err, "type", req.Type)
		if dlErr := w.queue.DeadLetter(w.ctx, req, err.Error()); dlErr != nil {
			log.Error("Failed to record dead letter", "error", dlErr)
		}
		if pubErr := w.broadcaster.PublishRequestFailed(w.ctx, req.CharacterID, req.RequestID, err.Error()); pubErr != nil {
			log.Error("Failed to publish failure event", "error", pubErr)
		}
		return nil
	}

	result["duration_ms"] = time.Since(start).Milliseconds()
	log.Info("Request processed",
		"worker_id", w.id,
		"type", req.Type,
		"duration_ms", result["duration_ms"])
	if err := w.broadcaster.PublishRequestCompleted(w.ctx, req.CharacterID, req.RequestID, result); err != nil {
		log.Error("Failed to publish completion event", "error", err)
	}
	return nil
}

// errBadRequest marks requests that can never succeed.
var errBadRequest = errors.New("bad request")

func (w *Worker) apply(req *queuePkg.Request) (map[string]any, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	switch req.Type {
	case queuePkg.RequestTypeMessage:
		res, err := w.engine.Say(w.ctx, req.CharacterID, req.SpeakerID, req.Message)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return nil, fmt.Errorf("dialogue failed: %w", res.Err)
		}
		return map[string]any{"line": res.Line, "outcome": string(res.Outcome)}, nil

	case queuePkg.RequestTypeDecision:
		r, err := response.ParseResponse(req.Response)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		res, err := w.engine.Apply(w.ctx, req.CharacterID, r)
		if err != nil {
			return nil, err
		}
		out := map[string]any{"success": res.Success, "outcome": string(res.Outcome)}
		if res.Line != "" {
			out["line"] = res.Line
		}
		if res.Err != nil {
			out["error"] = res.Err.Error()
		}
		return out, nil

	case queuePkg.RequestTypeComplete:
		done, err := w.engine.Complete(w.ctx, req.CharacterID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"completed": done}, nil
	}
	return nil, fmt.Errorf("%w: unknown request type %q", errBadRequest, req.Type)
}

// RunSweeper runs the engine's housekeeping every interval and republishes
// the office when anything changed.
func (w *Worker) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := w.engine.Sweeper.RunOnce(ctx)
			if report.Empty() {
				continue
			}
			if err := w.SyncCharacters(ctx); err != nil {
				w.log.Warn("Failed to publish character views after sweep", "error", err, "worker_id", w.id)
			}
		}
	}
}

// SyncCharacters publishes the view of every character in the office.
func (w *Worker) SyncCharacters(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	var errs []error
	for _, c := range w.engine.Office.Characters() {
		if err := w.saveView(ctx, c.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Worker) saveCharacters(ids ...string) {
	if w.store == nil {
		return
	}
	ctx := context.WithoutCancel(w.ctx)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := w.engine.Character(id); err != nil {
			continue
		}
		if err := w.saveView(ctx, id); err != nil {
			w.log.Error("Failed to save character view", "error", err, "character_id", id)
		}
	}
}

func (w *Worker) saveView(ctx context.Context, id string) error {
	c, err := w.engine.Character(id)
	if err != nil {
		return err
	}
	return w.store.SaveCharacter(ctx, &storage.CharacterRecord{
		View:      c.View(),
		WorkerID:  w.id,
		UpdatedAt: time.Now(),
	})
}
