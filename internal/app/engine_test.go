package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/roster"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
	"github.com/jwebster45206/npc-engine/pkg/response"
)

func testConfig() *config.Config {
	return &config.Config{
		RandomSeed:          7,
		TopicShiftThreshold: 8,
		EndThreshold:        15,
		TopicShiftChance:    0.3,
		SignOffChance:       0.2,
		ConversationMaxAge:  time.Hour,
		ActionTimeout:       30 * time.Second,
		MaxQueueSize:        3,
		SweepInterval:       time.Second,
	}
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	r, err := roster.Default()
	require.NoError(t, err)
	e, err := New(testConfig(), r, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngine_Converse(t *testing.T) {
	e := newEngine(t)

	lines, err := e.Converse(context.Background(), "alice", "bob", 4)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, "alice", lines[0].SpeakerID)
	assert.Equal(t, "bob", lines[1].SpeakerID)
	for _, l := range lines {
		assert.NotEmpty(t, l.Text)
	}

	rec, ok := e.Conversations.Get(conversation.Key("alice", "bob"))
	require.True(t, ok)
	assert.Equal(t, 3, rec.TurnCount, "the opener is not a turn")

	stats := e.Stats()
	assert.Equal(t, 4, stats.Processor.Processed)
	assert.Equal(t, 1, stats.Conversations.Total)
}

func TestEngine_Reproducible(t *testing.T) {
	first, err := newEngine(t).Converse(context.Background(), "dave", "carol", 5)
	require.NoError(t, err)
	second, err := newEngine(t).Converse(context.Background(), "dave", "carol", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_ApplyAndComplete(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	sub := e.Bus.Subscribe()

	res, err := e.Apply(ctx, "alice", response.Act(actor.NewActionIntent(actor.ActionWorkOn, "")))
	require.NoError(t, err)
	require.True(t, res.Success)

	alice, err := e.Character("alice")
	require.NoError(t, err)
	assert.InDelta(t, 35+response.WorkProgress(5), alice.Task().Progress, 1e-9)

	done, err := e.Complete(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, alice.IsBusy())

	first := <-sub
	assert.Equal(t, "action_started", string(first.Type))
	assert.Equal(t, "alice", first.CharacterID)
}

func TestEngine_UnknownCharacter(t *testing.T) {
	e := newEngine(t)

	_, err := e.Say(context.Background(), "zed", "alice", "hello")
	assert.ErrorIs(t, err, response.ErrUnknownCharacter)
	_, err = e.Converse(context.Background(), "alice", "zed", 2)
	assert.ErrorIs(t, err, response.ErrUnknownCharacter)
}
