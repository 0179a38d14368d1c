package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/services/events"
	queuePkg "github.com/jwebster45206/npc-engine/pkg/queue"
	"github.com/jwebster45206/npc-engine/pkg/response"
)

func init() {
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a request for the workers",
	}

	say := &cobra.Command{
		Use:   "say [character] [message]",
		Short: "Have someone speak to a character",
		Long:  "Queue a message for a character. With no message the character opens the conversation.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEnqueueSay,
	}
	say.Flags().StringP("from", "s", "", "Speaking character (required)")
	say.MarkFlagRequired("from")

	decide := &cobra.Command{
		Use:   "decide [character] [response-json]",
		Short: "Queue a decided response",
		Long:  "Queue a decided response for a character. The JSON can be a positional arg or piped via stdin.",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runEnqueueDecide,
	}

	complete := &cobra.Command{
		Use:   "complete [character]",
		Short: "Finish a character's active action",
		Args:  cobra.ExactArgs(1),
		Run:   runEnqueueComplete,
	}

	cmd.AddCommand(say, decide, complete)
	RootCmd.AddCommand(cmd)
}

func runEnqueueSay(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetString("from")
	enqueue(cmd, queuePkg.NewMessageRequest(args[0], from, strings.Join(args[1:], " ")))
}

func runEnqueueDecide(cmd *cobra.Command, args []string) {
	var data []byte
	if len(args) > 1 {
		data = []byte(args[1])
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		data = b
	}

	// reject bad responses here rather than in a worker's dead letters
	r, err := response.ParseResponse(data)
	if err != nil {
		exitErr("parse response", err)
	}
	req, err := queuePkg.NewDecisionRequest(args[0], r)
	if err != nil {
		exitErr("build request", err)
	}
	enqueue(cmd, req)
}

func runEnqueueComplete(cmd *cobra.Command, args []string) {
	enqueue(cmd, queuePkg.NewRequest(queuePkg.RequestTypeComplete, args[0]))
}

func enqueue(cmd *cobra.Command, req *queuePkg.Request) {
	cfg := loadConfig()
	client, requests := openQueue(cfg)
	defer client.Close()

	if err := requests.EnqueueRequest(cmd.Context(), req); err != nil {
		exitErr("enqueue", err)
	}
	broadcaster := events.NewBroadcaster(client.GetRedisClient(), newLogger(cfg))
	if err := broadcaster.PublishRequestQueued(cmd.Context(), req.CharacterID, req.RequestID, string(req.Type)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: queued event not published: %v\n", err)
	}

	if formatFlag == "json" {
		printJSON(req)
		return
	}
	fmt.Printf("queued %s request %s for %s\n", req.Type, req.RequestID, req.CharacterID)
}
