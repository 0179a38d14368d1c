package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/services/queue"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue depth and pending requests",
		Run:   runStats,
	}
	cmd.Flags().Int("peek", 5, "Number of pending requests to list")

	deadLetters := &cobra.Command{
		Use:   "dead-letters [character]",
		Short: "List requests the workers gave up on",
		Args:  cobra.ExactArgs(1),
		Run:   runDeadLetters,
	}

	RootCmd.AddCommand(cmd, deadLetters)
}

func runStats(cmd *cobra.Command, args []string) {
	peek, _ := cmd.Flags().GetInt("peek")

	cfg := loadConfig()
	client, requests := openQueue(cfg)
	defer client.Close()

	depth, err := requests.RequestQueueDepth(cmd.Context())
	if err != nil {
		exitErr("queue depth", err)
	}
	pending, err := requests.PeekRequests(cmd.Context(), peek)
	if err != nil {
		exitErr("peek", err)
	}

	if formatFlag == "json" {
		printJSON(map[string]any{"depth": depth, "pending": pending})
		return
	}
	fmt.Printf("queue depth: %d\n", depth)
	for _, req := range pending {
		fmt.Printf("  %s %-8s %s", req.EnqueuedAt.Format("15:04:05"), req.Type, req.CharacterID)
		if req.Message != "" {
			fmt.Printf(" <- %s: %q", req.SpeakerID, req.Message)
		}
		fmt.Println()
	}
}

func runDeadLetters(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	client, requests := openQueue(cfg)
	defer client.Close()

	letters, err := requests.DeadLetters(cmd.Context(), args[0])
	if err != nil {
		exitErr("dead letters", err)
	}

	if formatFlag == "json" {
		if letters == nil {
			letters = []queue.DeadLetter{}
		}
		printJSON(letters)
		return
	}
	if len(letters) == 0 {
		fmt.Printf("no dead letters for %s\n", args[0])
		return
	}
	for _, l := range letters {
		fmt.Printf("%s %s %s: %s\n", l.FailedAt.Format("2006-01-02 15:04:05"), l.Request.Type, l.Request.RequestID, l.Reason)
	}
}
