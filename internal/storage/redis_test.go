package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

func setupTestStorage(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisStorage(client, ttl, log), mr
}

func testRecord(id string) *storage.CharacterRecord {
	return &storage.CharacterRecord{
		View: actor.CharacterView{
			ID:       id,
			Name:     "Alice",
			Needs:    actor.DefaultNeeds(),
			Mood:     actor.MoodContent,
			Location: "open_plan",
			Task:     &actor.Task{ID: "report", Name: "Report", Progress: 40},
		},
		WorkerID: "worker-1",
	}
}

func TestRedisStorage_SaveAndLoad(t *testing.T) {
	s, _ := setupTestStorage(t, time.Hour)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := s.SaveCharacter(ctx, testRecord("alice")); err != nil {
		t.Fatalf("SaveCharacter failed: %v", err)
	}

	loaded, err := s.LoadCharacter(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadCharacter failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a record")
	}
	if loaded.View.Location != "open_plan" || loaded.View.Task == nil || loaded.View.Task.Progress != 40 {
		t.Errorf("unexpected view %+v", loaded.View)
	}
	if loaded.WorkerID != "worker-1" || loaded.UpdatedAt.IsZero() {
		t.Errorf("expected worker and timestamp, got %+v", loaded)
	}

	missing, err := s.LoadCharacter(ctx, "zed")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown character, got %+v, %v", missing, err)
	}
}

func TestRedisStorage_List(t *testing.T) {
	s, _ := setupTestStorage(t, 0)
	ctx := context.Background()

	for _, id := range []string{"dave", "alice", "bob"} {
		if err := s.SaveCharacter(ctx, testRecord(id)); err != nil {
			t.Fatalf("SaveCharacter(%s) failed: %v", id, err)
		}
	}
	if err := s.DeleteCharacter(ctx, "bob"); err != nil {
		t.Fatalf("DeleteCharacter failed: %v", err)
	}

	ids, err := s.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alice" || ids[1] != "dave" {
		t.Errorf("expected [alice dave], got %v", ids)
	}
}

func TestRedisStorage_Expiry(t *testing.T) {
	s, mr := setupTestStorage(t, time.Minute)
	ctx := context.Background()

	if err := s.SaveCharacter(ctx, testRecord("alice")); err != nil {
		t.Fatalf("SaveCharacter failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	ids, err := s.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected expired views to drop out, got %v", ids)
	}
	if mr.Exists(characterIndexKey) {
		members, _ := mr.SMembers(characterIndexKey)
		if len(members) != 0 {
			t.Errorf("expected the index to be pruned, got %v", members)
		}
	}
}

func TestRedisStorage_RejectsEmptyID(t *testing.T) {
	s, _ := setupTestStorage(t, time.Hour)
	if err := s.SaveCharacter(context.Background(), &storage.CharacterRecord{}); err == nil {
		t.Error("expected an error for a record without an id")
	}
}
