package response

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/snapshot"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// Event names fired by the processor.
const (
	EventActionStarted   = "action_started"
	EventActionCompleted = "action_completed"
	EventActionQueued    = "action_queued"
	EventActionRejected  = "action_rejected"
	EventActionTimedOut  = "action_timed_out"
	EventTaskCompleted   = "task_completed"
	EventObjectThrown    = "object_thrown"
	EventItemUsed        = "item_used"
	EventDialogue        = "dialogue"
	EventRecovery        = "recovery"
	EventFollowUp        = "follow_up"
)

// fallbackLines stand in for a failed dialogue generation.
var fallbackLines = []string{"I see.", "That's interesting."}

// Outcome is what happened to a processed response.
type Outcome string

const (
	OutcomeExecuted  Outcome = "executed"
	OutcomeQueued    Outcome = "queued"
	OutcomeIdle      Outcome = "idle"
	OutcomeRejected  Outcome = "rejected"
	OutcomeRecovered Outcome = "recovered"
	OutcomeMalformed Outcome = "malformed"
)

// Result describes one ProcessResponse call.
type Result struct {
	Success bool                `json:"success"`
	Outcome Outcome             `json:"outcome"`
	Line    string              `json:"line,omitempty"`
	Action  *actor.ActionIntent `json:"action,omitempty"`
	Err     error               `json:"-"`
}

// Stats counts processor outcomes.
type Stats struct {
	Processed int                      `json:"processed"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
	Queued    int                      `json:"queued"`
	Rejected  int                      `json:"rejected"`
	Recovered int                      `json:"recovered"`
	Malformed int                      `json:"malformed"`
	TimedOut  int                      `json:"timed_out"`
	Completed int                      `json:"completed"`
	ByAction  map[actor.ActionType]int `json:"by_action,omitempty"`
}

// World is everything the processor needs from the office. *world.Office
// implements it.
type World interface {
	world.Perception
	world.MovementExecutor
	world.Registry
	world.Inventory
}

// Options configures a Processor. World and Generator are required.
type Options struct {
	World         World
	Generator     dialogue.Generator
	Conversations *conversation.Manager // optional, backs stats and cleanup
	Events        world.EventSink
	NeedEffects   world.NeedEffectTable
	FollowUps     *FollowUpScheduler
	Rand          dialogue.Rand
	Logger        *slog.Logger
}

// Processor is the top-level coordinator for character decisions.
type Processor struct {
	perception    world.Perception
	movement      world.MovementExecutor
	registry      world.Registry
	inventory     world.Inventory
	generator     dialogue.Generator
	conversations *conversation.Manager
	events        world.EventSink
	effects       world.NeedEffectTable
	followUps     *FollowUpScheduler
	snapshots     *snapshot.Builder
	rng           dialogue.Rand
	logger        *slog.Logger
	now           func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewProcessor creates a processor.
func NewProcessor(opts Options) (*Processor, error) {
	if opts.World == nil {
		return nil, errors.New("processor needs a world")
	}
	if opts.Generator == nil {
		return nil, errors.New("processor needs a dialogue generator")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = world.DiscardEvents
	}
	if opts.NeedEffects == nil {
		opts.NeedEffects = world.NeedEffects
	}
	if opts.Rand == nil {
		opts.Rand = dialogue.NewRand(0)
	}
	return &Processor{
		perception:    opts.World,
		movement:      opts.World,
		registry:      opts.World,
		inventory:     opts.World,
		generator:     opts.Generator,
		conversations: opts.Conversations,
		events:        opts.Events,
		effects:       opts.NeedEffects,
		followUps:     opts.FollowUps,
		snapshots:     snapshot.NewBuilder(opts.World, opts.Logger),
		rng:           opts.Rand,
		logger:        opts.Logger,
		now:           time.Now,
		stats:         Stats{ByAction: make(map[actor.ActionType]int)},
	}, nil
}

// SetClock replaces the processor's time source.
func (p *Processor) SetClock(now func() time.Time) {
	p.now = now
}

// Snapshot builds a fresh snapshot of c.
func (p *Processor) Snapshot(ctx context.Context, c *actor.Character) *snapshot.Snapshot {
	return p.snapshots.Build(ctx, c)
}

// ProcessResponse applies a decision and reports whether it was committed
// or queued. Failures never escape: the character always ends idle or
// still busy with an earlier action.
func (p *Processor) ProcessResponse(ctx context.Context, c *actor.Character, r Response, snap *snapshot.Snapshot) bool {
	return p.Process(ctx, c, r, snap).Success
}

// Process is ProcessResponse with the details.
func (p *Processor) Process(ctx context.Context, c *actor.Character, r Response, snap *snapshot.Snapshot) (res Result) {
	p.count(func(s *Stats) { s.Processed++ })
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: panic: %v", ErrExecution, rec)
			res = p.recoverFrom(ctx, c, r, err)
		}
		p.count(func(s *Stats) {
			if res.Success {
				s.Succeeded++
			} else {
				s.Failed++
			}
		})
	}()

	if c == nil {
		return Result{Outcome: OutcomeMalformed, Err: ErrUnknownCharacter}
	}
	if err := r.Validate(); err != nil {
		p.count(func(s *Stats) { s.Malformed++ })
		p.logger.WarnContext(ctx, "Malformed response",
			"character_id", c.ID,
			"error", err)
		return Result{Outcome: OutcomeMalformed, Err: err}
	}
	if r.Action != nil {
		filled := r.Action.WithDefaults()
		r.Action = &filled
	}
	if snap == nil {
		snap = p.snapshots.Build(ctx, c)
	}

	switch r.Type {
	case TypeIdle:
		p.idle(c)
		return Result{Success: true, Outcome: OutcomeIdle}
	case TypeAction:
		return p.processAction(ctx, c, r, *r.Action)
	case TypeDialogue:
		return p.processDialogue(ctx, c, r, snap)
	default:
		return p.processMixed(ctx, c, r, snap)
	}
}

func (p *Processor) processMixed(ctx context.Context, c *actor.Character, r Response, snap *snapshot.Snapshot) Result {
	res := Result{Success: true, Outcome: OutcomeExecuted}
	if r.Action != nil {
		res = p.processAction(ctx, c, r, *r.Action)
		if res.Outcome == OutcomeRecovered {
			// recovery already ran the dialogue half
			return res
		}
	}
	if r.hasDialogue() {
		said := p.processDialogue(ctx, c, r, snap)
		res.Line = said.Line
		if !said.Success {
			res.Success = false
			res.Err = errors.Join(res.Err, said.Err)
		}
	}
	return res
}

func (p *Processor) idle(c *actor.Character) {
	if !c.IsBusy() {
		c.SetState(actor.StateIdle)
	}
}

func (p *Processor) processAction(ctx context.Context, c *actor.Character, r Response, intent actor.ActionIntent) Result {
	intent = intent.WithDefaults()
	p.count(func(s *Stats) { s.ByAction[intent.Type]++ })

	if intent.Type == actor.ActionIdle {
		p.idle(c)
		return Result{Success: true, Outcome: OutcomeIdle, Action: &intent}
	}

	if err := p.validate(c, intent); err != nil {
		p.logger.InfoContext(ctx, "Action failed validation",
			"character_id", c.ID,
			"action_type", intent.Type,
			"target", intent.Target,
			"error", err)
		return p.recoverFrom(ctx, c, Response{Type: TypeIdle}, err)
	}

	if c.IsBusy() || c.QueueFull() {
		return p.enqueue(ctx, c, intent)
	}
	return p.execute(ctx, c, r, intent)
}

func (p *Processor) enqueue(ctx context.Context, c *actor.Character, intent actor.ActionIntent) Result {
	if err := c.Enqueue(intent); err != nil {
		p.count(func(s *Stats) { s.Rejected++ })
		p.logger.WarnContext(ctx, "Action rejected, queue full",
			"character_id", c.ID,
			"action_type", intent.Type,
			"queue_length", c.QueueLen())
		p.fire(ctx, EventActionRejected, map[string]any{
			"character_id": c.ID,
			"action_id":    intent.ID.String(),
			"action_type":  string(intent.Type),
		})
		return Result{Outcome: OutcomeRejected, Action: &intent, Err: err}
	}
	p.count(func(s *Stats) { s.Queued++ })
	p.fire(ctx, EventActionQueued, map[string]any{
		"character_id": c.ID,
		"action_id":    intent.ID.String(),
		"action_type":  string(intent.Type),
		"queue_length": c.QueueLen(),
	})
	return Result{Success: true, Outcome: OutcomeQueued, Action: &intent}
}

func (p *Processor) execute(ctx context.Context, c *actor.Character, r Response, intent actor.ActionIntent) Result {
	run, ok := executors[intent.Type]
	if !ok {
		return p.recoverFrom(ctx, c, r, fmt.Errorf("%w: no executor for %s", ErrExecution, intent.Type))
	}

	now := p.now()
	c.StartAction(intent, stateFor(intent.Type), now)
	if err := p.safeRun(ctx, run, c, intent); err != nil {
		c.ClearBusyIf(intent)
		p.logger.WarnContext(ctx, "Action execution failed",
			"character_id", c.ID,
			"action_type", intent.Type,
			"error", err)
		return p.recoverFrom(ctx, c, r, err)
	}

	effects := p.effects.For(intent.Type)
	if len(effects) > 0 {
		c.ApplyNeeds(effects)
	}
	c.RecordAction(actor.ActionRecord{
		Intent:    intent,
		StartedAt: now,
		Location:  c.Location(),
		Effects:   effects,
	})
	p.fire(ctx, EventActionStarted, map[string]any{
		"character_id": c.ID,
		"action_id":    intent.ID.String(),
		"action_type":  string(intent.Type),
		"target":       intent.Target,
		"duration_ms":  intent.Duration.Milliseconds(),
	})
	p.logger.DebugContext(ctx, "Action started",
		"character_id", c.ID,
		"action_type", intent.Type,
		"target", intent.Target)
	return Result{Success: true, Outcome: OutcomeExecuted, Action: &intent}
}

// safeRun turns an executor panic into an execution error.
func (p *Processor) safeRun(ctx context.Context, run executor, c *actor.Character, intent actor.ActionIntent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", ErrExecution, rec)
		}
	}()
	return run(ctx, p, c, intent)
}

func (p *Processor) processDialogue(ctx context.Context, c *actor.Character, r Response, snap *snapshot.Snapshot) Result {
	var speaker *actor.Character
	if r.Target != "" && r.Target != c.ID {
		other, ok := p.registry.GetCharacter(r.Target)
		if !ok {
			return p.recoverFrom(ctx, c, Response{Type: TypeIdle}, fmt.Errorf("%w: %s", ErrUnknownCharacter, r.Target))
		}
		speaker = other
	}

	line := p.generate(ctx, c, r.Dialogue, speaker, snap)
	now := p.now()
	listener := "themselves"
	if speaker != nil {
		listener = speaker.Name
		if r.Dialogue != "" {
			c.Remember(actor.MemoryDialogue, fmt.Sprintf("%s said: %s", speaker.Name, r.Dialogue), now)
		}
	}
	c.Remember(actor.MemoryDialogue, fmt.Sprintf("I told %s: %s", listener, line), now)

	payload := map[string]any{
		"character_id": c.ID,
		"text":         line,
	}
	if speaker != nil {
		payload["target"] = speaker.ID
	}
	p.fire(ctx, EventDialogue, payload)

	if p.followUps != nil {
		p.followUps.MaybeSchedule(c, r.Target)
	}
	return Result{Success: true, Outcome: OutcomeExecuted, Line: line}
}

// GenerateResponse produces c's reply to incoming from speaker without
// committing anything else. Generation failures yield a terse fallback.
func (p *Processor) GenerateResponse(ctx context.Context, c *actor.Character, incoming string, speaker *actor.Character, snap *snapshot.Snapshot) string {
	if snap == nil && c != nil {
		snap = p.snapshots.Build(ctx, c)
	}
	return p.generate(ctx, c, incoming, speaker, snap)
}

func (p *Processor) generate(ctx context.Context, c *actor.Character, incoming string, speaker *actor.Character, snap *snapshot.Snapshot) (line string) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "Dialogue generation panicked",
				"panic", fmt.Sprint(rec))
			line = p.fallbackLine()
		}
	}()
	line, err := p.generator.GenerateResponse(ctx, c, incoming, speaker, snap)
	if err != nil || line == "" {
		characterID := ""
		if c != nil {
			characterID = c.ID
		}
		p.logger.WarnContext(ctx, "Dialogue generation failed, using fallback",
			"character_id", characterID,
			"error", err)
		return p.fallbackLine()
	}
	return line
}

func (p *Processor) fallbackLine() string {
	return fallbackLines[p.rng.Intn(len(fallbackLines))]
}

// recoverFrom degrades a failed response: to its dialogue part when it has
// one and the failure was in execution, otherwise to idle.
func (p *Processor) recoverFrom(ctx context.Context, c *actor.Character, r Response, cause error) Result {
	p.count(func(s *Stats) { s.Recovered++ })
	if c == nil {
		return Result{Outcome: OutcomeRecovered, Err: cause}
	}
	if a := c.ActiveAction(); a != nil && r.Action != nil && a.Intent.ID == r.Action.ID {
		c.ClearBusyIf(a.Intent)
	}
	p.idle(c)

	p.fire(ctx, EventRecovery, map[string]any{
		"character_id": c.ID,
		"reason":       cause.Error(),
	})

	res := Result{Outcome: OutcomeRecovered, Err: cause}
	if errors.Is(cause, ErrExecution) && r.Type == TypeMixed && r.hasDialogue() {
		res.Line = p.processDialogue(ctx, c, r, nil).Line
	}
	return res
}

// CompleteAction finishes c's active action and starts the next queued
// one, if any. It reports whether an action was active.
func (p *Processor) CompleteAction(ctx context.Context, c *actor.Character) bool {
	prev := c.ClearBusy()
	if prev == nil {
		return false
	}
	p.count(func(s *Stats) { s.Completed++ })
	p.fire(ctx, EventActionCompleted, map[string]any{
		"character_id": c.ID,
		"action_id":    prev.Intent.ID.String(),
		"action_type":  string(prev.Intent.Type),
	})
	p.drain(ctx, c)
	return true
}

// drain starts queued actions until one takes or the queue is empty.
func (p *Processor) drain(ctx context.Context, c *actor.Character) {
	for !c.IsBusy() {
		next, ok := c.DequeueNext()
		if !ok {
			return
		}
		p.Process(ctx, c, Act(next), nil)
	}
}

// ForceClear clears a stuck action without completing it, then starts
// the next queued one.
func (p *Processor) ForceClear(ctx context.Context, c *actor.Character, a actor.ActiveAction, age time.Duration) bool {
	if !c.ClearBusyIf(a.Intent) {
		return false
	}
	p.count(func(s *Stats) { s.TimedOut++ })
	p.logger.WarnContext(ctx, "Action timed out, clearing busy flag",
		"character_id", c.ID,
		"action_type", a.Intent.Type,
		"action_id", a.Intent.ID.String(),
		"age", age.String())
	p.fire(ctx, EventActionTimedOut, map[string]any{
		"character_id": c.ID,
		"action_id":    a.Intent.ID.String(),
		"action_type":  string(a.Intent.Type),
	})
	p.drain(ctx, c)
	return true
}

// Stats returns a copy of the counters.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.stats
	out.ByAction = make(map[actor.ActionType]int, len(p.stats.ByAction))
	for k, v := range p.stats.ByAction {
		out.ByAction[k] = v
	}
	return out
}

// ConversationStats reports on the conversation store, if one is attached.
func (p *Processor) ConversationStats() conversation.Stats {
	if p.conversations == nil {
		return conversation.Stats{}
	}
	return p.conversations.Stats()
}

// CleanupOldConversations evicts stale conversations, if a store is attached.
func (p *Processor) CleanupOldConversations(maxAge time.Duration) int {
	if p.conversations == nil {
		return 0
	}
	return p.conversations.CleanupOldConversations(maxAge)
}

func (p *Processor) count(f func(*Stats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f(&p.stats)
}

func (p *Processor) fire(ctx context.Context, name string, payload map[string]any) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "Event sink panicked",
				"event", name,
				"panic", fmt.Sprint(rec))
		}
	}()
	p.events.FireEvent(ctx, name, payload)
}
