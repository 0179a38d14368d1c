package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
	"github.com/jwebster45206/npc-engine/pkg/snapshot"
)

// ErrNoCharacter is returned when a reply is requested for a nil character.
var ErrNoCharacter = errors.New("no character to speak")

// Generator produces a character's next line. An empty incoming message
// asks for a conversation opener; a nil speaker means the character is
// talking to itself.
type Generator interface {
	GenerateResponse(ctx context.Context, c *actor.Character, incoming string, speaker *actor.Character, snap *snapshot.Snapshot) (string, error)
}

// Reply is a generated line with the decisions behind it.
type Reply struct {
	Text       string                 `json:"text"`
	Pool       PoolName               `json:"pool"`
	Confidence float64                `json:"confidence"`
	Analysis   analysis.Analysis      `json:"analysis"`
	Lifecycle  conversation.Lifecycle `json:"lifecycle"`
	Key        string                 `json:"conversation"`
}

// RuleGenerator is the rule-based Generator: it analyzes the message,
// records the turn, routes to a topic pool, shapes the result for the
// character's personality and threads it into the conversation.
type RuleGenerator struct {
	router        *Router
	shaper        *Shaper
	conversations *conversation.Manager
	logger        *slog.Logger
}

// NewRuleGenerator wires a generator from its parts.
func NewRuleGenerator(router *Router, shaper *Shaper, conversations *conversation.Manager, logger *slog.Logger) *RuleGenerator {
	return &RuleGenerator{
		router:        router,
		shaper:        shaper,
		conversations: conversations,
		logger:        orDefault(logger),
	}
}

// NewDefaultGenerator builds a RuleGenerator over the standard pools.
func NewDefaultGenerator(rng Rand, conversations *conversation.Manager, logger *slog.Logger) *RuleGenerator {
	return NewRuleGenerator(NewRouter(rng, logger), NewShaper(rng), conversations, logger)
}

// Conversations returns the manager backing this generator.
func (g *RuleGenerator) Conversations() *conversation.Manager {
	return g.conversations
}

func (g *RuleGenerator) GenerateResponse(ctx context.Context, c *actor.Character, incoming string, speaker *actor.Character, snap *snapshot.Snapshot) (string, error) {
	reply, err := g.Generate(ctx, c, incoming, speaker, snap)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// Generate is GenerateResponse with the routing details. Turns for one
// conversation are serialized.
func (g *RuleGenerator) Generate(ctx context.Context, c *actor.Character, incoming string, speaker *actor.Character, snap *snapshot.Snapshot) (Reply, error) {
	if c == nil {
		return Reply{}, ErrNoCharacter
	}
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	speakerID := ""
	if speaker != nil {
		speakerID = speaker.ID
	}
	key := conversation.Key(c.ID, speakerID)
	unlock := g.conversations.Lock(key)
	defer unlock()

	a := analysis.Analyze(incoming)
	var record conversation.Record
	if strings.TrimSpace(incoming) == "" {
		record = g.conversations.GetOrCreate(c.ID, speakerID)
	} else {
		turn := g.conversations.RecordTurn(key, speakerID, incoming, a)
		record = turn.Record
	}

	res := g.router.Route(incoming, c, Context{
		Analysis: a,
		Snapshot: snap,
		Speaker:  speaker,
	}, &record)

	text := g.shaper.Shape(res.Response, c)
	text = g.conversations.Thread(text, record, c)

	g.conversations.RecordReply(key, c.ID, text, conversation.RouteDecision{
		Pool:       string(res.Pool),
		Confidence: res.Confidence,
	})

	g.logger.Debug("Generated reply",
		"character_id", c.ID,
		"speaker_id", speakerID,
		"pool", res.Pool,
		"confidence", res.Confidence,
		"lifecycle", record.State)

	return Reply{
		Text:       text,
		Pool:       res.Pool,
		Confidence: res.Confidence,
		Analysis:   a,
		Lifecycle:  record.State,
		Key:        key,
	}, nil
}
