package response

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// Follow-up defaults.
const (
	DefaultFollowUpChance = 0.15
	DefaultFollowUpDelay  = 10 * time.Second
)

var followUpLines = map[string][]string{
	"Extroverted": {
		"Oh, and one more thing!",
		"Wait, I forgot to tell you something!",
		"Also, we should grab coffee later!",
	},
	"Anxious": {
		"Sorry, I hope that didn't come out wrong.",
		"Was that okay? I wasn't sure.",
	},
	"Talkative": {
		"Anyway, where was I?",
		"That reminds me of something else, actually.",
	},
}

var followUpTraits = []string{"Extroverted", "Anxious", "Talkative"}

// FollowUp is a line a character may add a little after speaking.
type FollowUp struct {
	ID          uuid.UUID `json:"id"`
	CharacterID string    `json:"character_id"`
	TargetID    string    `json:"target_id,omitempty"`
	Line        string    `json:"line"`
	DueAt       time.Time `json:"due_at"`
}

// FollowUpScheduler holds deferred personality follow-ups. Items are
// cancellable, and an item whose character is gone or busy when it comes
// due is dropped without error.
type FollowUpScheduler struct {
	mu       sync.Mutex
	items    map[uuid.UUID]FollowUp
	registry world.Registry
	events   world.EventSink
	rng      dialogue.Rand
	limiter  *rate.Limiter
	logger   *slog.Logger
	now      func() time.Time

	Chance float64
	Delay  time.Duration
}

// NewFollowUpScheduler creates a scheduler. limiter caps how often new
// follow-ups are scheduled; nil allows one every two seconds with a burst
// of three.
func NewFollowUpScheduler(registry world.Registry, events world.EventSink, rng dialogue.Rand, limiter *rate.Limiter, logger *slog.Logger) *FollowUpScheduler {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(2*time.Second), 3)
	}
	if events == nil {
		events = world.DiscardEvents
	}
	if rng == nil {
		rng = dialogue.NewRand(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowUpScheduler{
		items:    make(map[uuid.UUID]FollowUp),
		registry: registry,
		events:   events,
		rng:      rng,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
		Chance:   DefaultFollowUpChance,
		Delay:    DefaultFollowUpDelay,
	}
}

// SetClock replaces the scheduler's time source.
func (s *FollowUpScheduler) SetClock(now func() time.Time) {
	s.now = now
}

// MaybeSchedule rolls for a follow-up after c speaks to targetID.
func (s *FollowUpScheduler) MaybeSchedule(c *actor.Character, targetID string) (uuid.UUID, bool) {
	var lines []string
	for _, trait := range followUpTraits {
		if c.HasTrait(trait) {
			lines = append(lines, followUpLines[trait]...)
		}
	}
	if len(lines) == 0 || s.rng.Float64() >= s.Chance {
		return uuid.Nil, false
	}
	if !s.limiter.Allow() {
		s.logger.Debug("Follow-up rate limited", "character_id", c.ID)
		return uuid.Nil, false
	}
	return s.Schedule(c.ID, targetID, lines[s.rng.Intn(len(lines))], s.Delay), true
}

// Schedule queues a follow-up line.
func (s *FollowUpScheduler) Schedule(characterID, targetID, line string, delay time.Duration) uuid.UUID {
	item := FollowUp{
		ID:          uuid.New(),
		CharacterID: characterID,
		TargetID:    targetID,
		Line:        line,
		DueAt:       s.now().Add(delay),
	}
	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()
	return item.ID
}

// Cancel removes a pending follow-up.
func (s *FollowUpScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// CancelFor removes every pending follow-up owned by a character.
func (s *FollowUpScheduler) CancelFor(characterID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, item := range s.items {
		if item.CharacterID == characterID {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Pending returns the scheduled follow-ups, soonest first.
func (s *FollowUpScheduler) Pending() []FollowUp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FollowUp, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

// RunDue delivers every follow-up due at now and returns how many were
// delivered. Skipped items are removed too.
func (s *FollowUpScheduler) RunDue(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var due []FollowUp
	for id, item := range s.items {
		if !item.DueAt.After(now) {
			due = append(due, item)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })

	delivered := 0
	for _, item := range due {
		c, ok := s.registry.GetCharacter(item.CharacterID)
		if !ok || c.IsBusy() {
			s.logger.DebugContext(ctx, "Skipping follow-up",
				"character_id", item.CharacterID,
				"removed", !ok)
			continue
		}
		c.Remember(actor.MemoryDialogue, "I added: "+item.Line, now)
		s.events.FireEvent(ctx, EventFollowUp, map[string]any{
			"character_id": item.CharacterID,
			"target":       item.TargetID,
			"text":         item.Line,
		})
		delivered++
	}
	return delivered
}
