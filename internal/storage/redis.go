package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const characterIndexKey = "npc-characters"

// RedisStorage implements the Storage interface on Redis. Character views
// expire after ttl unless a worker refreshes them.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage wraps an existing client. A zero ttl keeps views forever.
func NewRedisStorage(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func characterKey(id string) string {
	return "npc-character:" + id
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close is a no-op; the client belongs to the caller.
func (r *RedisStorage) Close() error {
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, retries int, delay time.Duration) error {
	for i := 0; i < retries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("redis did not become available after %d attempts", retries)
}

// Character operations

func (r *RedisStorage) SaveCharacter(ctx context.Context, rec *storage.CharacterRecord) error {
	if rec == nil || rec.View.ID == "" {
		return errors.New("character record has no id")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal character", "character_id", rec.View.ID, "error", err)
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKey(rec.View.ID), data, r.ttl)
	pipe.SAdd(ctx, characterIndexKey, rec.View.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save character", "character_id", rec.View.ID, "error", err)
		return fmt.Errorf("failed to save character: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadCharacter(ctx context.Context, id string) (*storage.CharacterRecord, error) {
	data, err := r.client.Get(ctx, characterKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load character", "character_id", id, "error", err)
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	var rec storage.CharacterRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		r.logger.Error("Failed to unmarshal character", "character_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteCharacter(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKey(id))
	pipe.SRem(ctx, characterIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to delete character", "character_id", id, "error", err)
		return fmt.Errorf("failed to delete character: %w", err)
	}
	return nil
}

// ListCharacters drops index entries whose view has expired.
func (r *RedisStorage) ListCharacters(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, characterIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	live := ids[:0]
	for _, id := range ids {
		n, err := r.client.Exists(ctx, characterKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check character %s: %w", id, err)
		}
		if n == 0 {
			r.client.SRem(ctx, characterIndexKey, id)
			continue
		}
		live = append(live, id)
	}
	sort.Strings(live)
	return live, nil
}
