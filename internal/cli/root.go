// Package cli implements the npcctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
)

var (
	redisURL   string
	rosterPath string
	formatFlag string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "npcctl",
	Short: "Drive and inspect the office NPC engine",
	Long:  "npcctl queues requests for the NPC workers, watches their events and runs offline simulations of the office.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL (default: $REDIS_URL)")
	RootCmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "Roster YAML (default: $ROSTER_PATH or the built-in office)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	if redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if rosterPath != "" {
		cfg.RosterPath = rosterPath
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func openQueue(cfg *config.Config) (*queue.Client, *queue.RequestQueue) {
	client, err := queue.NewClient(cfg.RedisURL, newLogger(cfg))
	if err != nil {
		exitErr("connect to redis", err)
	}
	return client, queue.NewRequestQueue(client)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
