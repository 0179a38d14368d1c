// Package app wires the office, the dialogue stack and the response
// processor into one engine shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/roster"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/response"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// Engine is a running office.
type Engine struct {
	Office        *world.Office
	Conversations *conversation.Manager
	Generator     *dialogue.RuleGenerator
	Processor     *response.Processor
	FollowUps     *response.FollowUpScheduler
	Sweeper       *response.Sweeper
	Bus           *events.MemoryBus

	logger *slog.Logger
}

// Line is one spoken turn.
type Line struct {
	SpeakerID string `json:"speaker_id"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// New builds an engine over the roster. sink receives every world event in
// addition to the in-process bus; it may be nil.
func New(cfg *config.Config, r *roster.Roster, sink world.EventSink, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	office, err := r.Build(cfg.MaxQueueSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build office: %w", err)
	}

	rng := dialogue.NewRand(cfg.RandomSeed)
	bus := events.NewMemoryBus()
	allEvents := events.Multi(bus, sink)

	conversations := conversation.NewManager(cfg.Conversation(), rng, logger)
	generator := dialogue.NewDefaultGenerator(rng, conversations, logger)
	followUps := response.NewFollowUpScheduler(office, allEvents, rng, nil, logger)

	processor, err := response.NewProcessor(response.Options{
		World:         office,
		Generator:     generator,
		Conversations: conversations,
		Events:        allEvents,
		FollowUps:     followUps,
		Rand:          rng,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	sweeper := response.NewSweeper(processor, office, followUps, logger)
	sweeper.Timeout = cfg.ActionTimeout
	sweeper.MaxConversationAge = cfg.ConversationMaxAge

	return &Engine{
		Office:        office,
		Conversations: conversations,
		Generator:     generator,
		Processor:     processor,
		FollowUps:     followUps,
		Sweeper:       sweeper,
		Bus:           bus,
		logger:        logger,
	}, nil
}

// Character looks up a character by id.
func (e *Engine) Character(id string) (*actor.Character, error) {
	c, ok := e.Office.GetCharacter(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", response.ErrUnknownCharacter, id)
	}
	return c, nil
}

// Say has listenerID answer message from speakerID. An empty message asks
// the listener to open the conversation.
func (e *Engine) Say(ctx context.Context, listenerID, speakerID, message string) (response.Result, error) {
	c, err := e.Character(listenerID)
	if err != nil {
		return response.Result{}, err
	}
	return e.Processor.Process(ctx, c, response.Say(speakerID, message), nil), nil
}

// Apply processes a decided response for a character.
func (e *Engine) Apply(ctx context.Context, characterID string, r response.Response) (response.Result, error) {
	c, err := e.Character(characterID)
	if err != nil {
		return response.Result{}, err
	}
	return e.Processor.Process(ctx, c, r, nil), nil
}

// Complete finishes a character's active action.
func (e *Engine) Complete(ctx context.Context, characterID string) (bool, error) {
	c, err := e.Character(characterID)
	if err != nil {
		return false, err
	}
	return e.Processor.CompleteAction(ctx, c), nil
}

// Converse runs a conversation of turns lines, opened by aID.
func (e *Engine) Converse(ctx context.Context, aID, bID string, turns int) ([]Line, error) {
	a, err := e.Character(aID)
	if err != nil {
		return nil, err
	}
	b, err := e.Character(bID)
	if err != nil {
		return nil, err
	}

	var lines []Line
	speaker, listener := a, b
	last := ""
	for i := 0; i < turns; i++ {
		if err := ctx.Err(); err != nil {
			return lines, err
		}
		res := e.Processor.Process(ctx, speaker, response.Say(listener.ID, last), nil)
		if res.Line == "" {
			return lines, fmt.Errorf("%s had nothing to say: %w", speaker.ID, res.Err)
		}
		lines = append(lines, Line{SpeakerID: speaker.ID, Speaker: speaker.Name, Text: res.Line})
		last = res.Line
		speaker, listener = listener, speaker
	}
	return lines, nil
}

// Stats is a combined report.
type Stats struct {
	Processor     response.Stats     `json:"processor"`
	Conversations conversation.Stats `json:"conversations"`
	PendingFollow int                `json:"pending_follow_ups"`
	DroppedEvents int64              `json:"dropped_events"`
}

// Stats reports on the processor, conversations and housekeeping.
func (e *Engine) Stats() Stats {
	return Stats{
		Processor:     e.Processor.Stats(),
		Conversations: e.Processor.ConversationStats(),
		PendingFollow: len(e.FollowUps.Pending()),
		DroppedEvents: e.Bus.Dropped(),
	}
}

// Close releases the in-process bus.
func (e *Engine) Close() {
	e.Bus.Close()
}
