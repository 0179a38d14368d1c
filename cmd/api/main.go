package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

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

	rdb := queueClient.GetRedisClient()
	store := storage.NewRedisStorage(rdb, cfg.CharacterTTL, log)
	requests := queue.NewRequestQueue(queueClient)
	broadcaster := events.NewBroadcaster(rdb, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, requests, log))

	npcHandler := handlers.NewNPCHandler(store, requests, broadcaster, log)
	mux.Handle("/v1/npcs", npcHandler)
	mux.Handle("/v1/npcs/", npcHandler)

	eventsHandler := handlers.NewEventsHandler(broadcaster, log)
	mux.Handle("/v1/events", eventsHandler)
	mux.Handle("/v1/events/", eventsHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handlers.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: the event stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
