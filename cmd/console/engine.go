package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/npc-engine/internal/app"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/response"
)

const sayTimeout = 5 * time.Second

type replyMsg struct {
	speaker string
	line    string
	err     error
}

type worldEventMsg struct {
	event events.Event
	ok    bool
}

type sweepTickMsg struct{}

// say asks listenerID to answer message spoken by speakerID.
func say(engine *app.Engine, listenerID, speakerID, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sayTimeout)
		defer cancel()

		listener, err := engine.Character(listenerID)
		if err != nil {
			return replyMsg{err: err}
		}
		res, err := engine.Say(ctx, listenerID, speakerID, message)
		if err != nil {
			return replyMsg{err: err}
		}
		if res.Line == "" {
			return replyMsg{err: fmt.Errorf("%s has nothing to say: %v", listener.Name, res.Err)}
		}
		return replyMsg{speaker: listener.Name, line: res.Line}
	}
}

// waitForEvent reads the next event off the engine bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-sub
		return worldEventMsg{event: e, ok: ok}
	}
}

func sweepTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return sweepTickMsg{}
	})
}

// describeEvent renders a bus event as one line, or "" for noise.
func describeEvent(e events.Event) string {
	switch string(e.Type) {
	case response.EventFollowUp:
		line, _ := e.Data["text"].(string)
		if line == "" {
			return ""
		}
		return fmt.Sprintf("%s: %s", e.CharacterID, line)
	case response.EventActionStarted, response.EventActionCompleted, response.EventActionQueued, response.EventActionTimedOut:
		action, _ := e.Data["action_type"].(string)
		return strings.TrimSpace(fmt.Sprintf("%s %s %s", e.CharacterID, strings.ReplaceAll(string(e.Type), "_", " "), action))
	}
	return ""
}

// writeMetadata renders the side panel for the character being talked to.
func writeMetadata(engine *app.Engine, listenerID, playerID string) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("OFFICE") + "\n\n")

	c, err := engine.Character(listenerID)
	if err != nil {
		content.WriteString(errorStyle.Render(err.Error()) + "\n")
		return content.String()
	}
	v := c.View()

	fmt.Fprintf(&content, "Talking to:\n%s (%s)\n\n", v.Name, v.ID)
	if v.Role != "" {
		fmt.Fprintf(&content, "Role:\n%s\n\n", v.Role)
	}
	if len(v.Personality) > 0 {
		fmt.Fprintf(&content, "Personality:\n%s\n\n", strings.Join(v.Personality, ", "))
	}
	fmt.Fprintf(&content, "Mood:\n%s\n\n", v.Mood)
	fmt.Fprintf(&content, "Location:\n%s\n\n", v.Location)
	fmt.Fprintf(&content, "State:\n%s", v.State)
	if v.QueueLength > 0 {
		fmt.Fprintf(&content, " (+%d queued)", v.QueueLength)
	}
	content.WriteString("\n\n")
	if v.Task != nil {
		fmt.Fprintf(&content, "Task:\n%s %.0f%%\n\n", v.Task.Name, v.Task.Progress)
	}

	content.WriteString("Needs:\n")
	content.WriteString(formatNeeds(v.Needs))
	content.WriteString("\n")

	fmt.Fprintf(&content, "Speaking as:\n%s\n", playerID)
	return content.String()
}

func formatNeeds(n actor.Needs) string {
	var b strings.Builder
	m := n.ToMap()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "• %s: %.1f\n", name, m[actor.NeedName(name)])
	}
	return b.String()
}

func formatStats(engine *app.Engine) string {
	s := engine.Stats()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Stats:") + "\n")
	fmt.Fprintf(&b, "• processed: %d (ok %d, failed %d)\n", s.Processor.Processed, s.Processor.Succeeded, s.Processor.Failed)
	fmt.Fprintf(&b, "• conversations: %d, %d turns total\n", s.Conversations.Total, s.Conversations.TotalTurns)
	pools := make([]string, 0, len(s.Conversations.PoolUsage))
	for pool := range s.Conversations.PoolUsage {
		pools = append(pools, pool)
	}
	sort.Strings(pools)
	for _, pool := range pools {
		fmt.Fprintf(&b, "  - %s: %d\n", pool, s.Conversations.PoolUsage[pool])
	}
	fmt.Fprintf(&b, "• pending follow-ups: %d\n", s.PendingFollow)
	return b.String()
}
