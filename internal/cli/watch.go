package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/services/events"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch [character]",
		Short: "Stream worker events",
		Long:  "Follow the events published by the workers, for one character or the whole office.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runWatch,
	}

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	characterID := ""
	if len(args) > 0 {
		characterID = args[0]
	}

	cfg := loadConfig()
	client, _ := openQueue(cfg)
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	broadcaster := events.NewBroadcaster(client.GetRedisClient(), newLogger(cfg))
	stream, err := broadcaster.Subscribe(ctx, characterID)
	if err != nil {
		exitErr("subscribe", err)
	}

	for e := range stream {
		if formatFlag == "json" {
			b, _ := json.Marshal(e)
			fmt.Println(string(b))
			continue
		}
		data, _ := json.Marshal(e.Data)
		fmt.Printf("%s %-20s %-8s %s\n", e.At.Format("15:04:05.000"), e.Type, e.CharacterID, data)
	}
	if err := ctx.Err(); err != nil && err != context.Canceled {
		exitErr("watch", err)
	}
}
