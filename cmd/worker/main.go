package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-engine/internal/app"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/roster"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"roster", cfg.RosterPath)

	r, err := roster.Load(cfg.RosterPath)
	if err != nil {
		log.Error("Failed to load roster", "error", err)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	requests := queue.NewRequestQueue(queueClient)
	broadcaster := events.NewBroadcaster(queueClient.GetRedisClient(), log)
	log.Info("Queue service initialized successfully")

	engine, err := app.New(cfg, r, broadcaster, log)
	if err != nil {
		log.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()
	log.Info("Engine initialized successfully", "characters", len(r.Characters))

	store := storage.NewRedisStorage(queueClient.GetRedisClient(), cfg.CharacterTTL, log)
	w := worker.New(requests, engine, broadcaster, store, queueClient.GetRedisClient(), log, cfg.WorkerID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.RunSweeper(ctx, cfg.SweepInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()
	cancel()

	// let the in-flight request finish
	time.Sleep(2 * time.Second)

	log.Info("Worker exited", "stats", engine.Stats())
}
