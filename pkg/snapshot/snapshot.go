// Package snapshot assembles what a character knows about itself and its
// surroundings into a single read-only structure.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

const (
	UnknownLocationName = "Unknown Location"
	DefaultPrivacy      = 5
)

var privacyByType = map[world.LocationType]int{
	world.LocationPrivateOffice: 8,
	world.LocationRestroom:      9,
	world.LocationMeetingRoom:   6,
	world.LocationBreakRoom:     4,
	world.LocationKitchen:       3,
	world.LocationOpenPlan:      2,
	world.LocationHallway:       1,
}

// Perception is the external half of a snapshot.
type Perception struct {
	Location     world.Location     `json:"location"`
	Privacy      int                `json:"privacy"` // 0-10, higher is more private
	Nearby       world.Nearby       `json:"nearby"`
	LegalIntents []actor.ActionType `json:"legal_intents"`
}

// Snapshot is an immutable view of a character and its surroundings at
// decision time.
type Snapshot struct {
	Character  actor.CharacterView `json:"character"`
	Perception Perception          `json:"perception"`
	TakenAt    time.Time           `json:"taken_at"`
}

// CanDo reports whether the action type is currently legal.
func (s *Snapshot) CanDo(t actor.ActionType) bool {
	if s == nil {
		return false
	}
	for _, i := range s.Perception.LegalIntents {
		if i == t {
			return true
		}
	}
	return false
}

// Builder projects characters into snapshots. It never mutates the
// character or the world.
type Builder struct {
	world  world.Perception
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder. A nil perception yields default perception
// for every snapshot.
func NewBuilder(p world.Perception, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{world: p, logger: logger, now: time.Now}
}

// Build always returns a complete snapshot. World lookups that fail or
// panic fall back to defaults.
func (b *Builder) Build(ctx context.Context, c *actor.Character) *Snapshot {
	view := c.View()
	snap := &Snapshot{
		Character: view,
		TakenAt:   b.now(),
	}
	snap.Perception = b.perceive(ctx, c, view)
	return snap
}

func (b *Builder) perceive(ctx context.Context, c *actor.Character, view actor.CharacterView) (p Perception) {
	p = Perception{
		Location: world.Location{ID: view.Location, Name: UnknownLocationName},
		Privacy:  DefaultPrivacy,
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "Perception lookup panicked, using defaults",
				"character_id", view.ID,
				"panic", fmt.Sprint(r))
			p = Perception{
				Location:     world.Location{ID: view.Location, Name: UnknownLocationName},
				Privacy:      DefaultPrivacy,
				LegalIntents: LegalIntents(view, false),
			}
		}
	}()

	if b.world == nil {
		p.LegalIntents = LegalIntents(view, false)
		return p
	}

	if loc, ok := b.world.GetLocation(view.Location); ok {
		p.Location = loc
	} else {
		b.logger.DebugContext(ctx, "Unknown location for character",
			"character_id", view.ID,
			"location", view.Location)
	}
	p.Nearby = b.world.GetNearbyEntities(c)
	if p.Location.Name != UnknownLocationName {
		p.Privacy = PrivacyScore(p.Location.Type, len(p.Nearby.Characters))
	}

	atTask := view.Task != nil && view.Task.RequiredLocation != "" && view.Task.RequiredLocation == view.Location
	p.LegalIntents = LegalIntents(view, atTask)
	return p
}

// PrivacyScore rates a location 0-10 from its type, less one point per
// other character present.
func PrivacyScore(t world.LocationType, others int) int {
	score, ok := privacyByType[t]
	if !ok {
		score = DefaultPrivacy
	}
	score -= others
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// LegalIntents applies the fixed ladder: IDLE and MOVE_TO always; PUT_DOWN
// and THROW when holding something; WORK_ON at the task location; then one
// restorative intent per unmet need.
func LegalIntents(view actor.CharacterView, atTaskLocation bool) []actor.ActionType {
	intents := []actor.ActionType{actor.ActionIdle, actor.ActionMoveTo}
	if view.HeldItem != "" {
		intents = append(intents, actor.ActionPutDown, actor.ActionThrow)
	}
	if atTaskLocation {
		intents = append(intents, actor.ActionWorkOn)
	}
	for _, need := range view.Needs.Unmet() {
		switch need {
		case actor.NeedEnergy:
			intents = append(intents, actor.ActionDrinkCoffee)
		case actor.NeedHunger:
			intents = append(intents, actor.ActionEatSnack)
		case actor.NeedSocial:
			intents = append(intents, actor.ActionSocialize)
		}
	}
	return intents
}

// Summary renders the snapshot as a short text block for a generative
// backend or a debug console.
func (s *Snapshot) Summary() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	c := s.Character
	p := s.Perception

	fmt.Fprintf(&sb, "%s", c.Name)
	if c.Role != "" {
		fmt.Fprintf(&sb, " (%s)", c.Role)
	}
	fmt.Fprintf(&sb, " is %s.\n", c.Mood.Describe())
	if len(c.Personality) > 0 {
		fmt.Fprintf(&sb, "Personality: %s\n", strings.Join(c.Personality, ", "))
	}
	fmt.Fprintf(&sb, "Needs: energy %.1f, hunger %.1f, social %.1f, comfort %.1f, stress %.1f\n",
		c.Needs.Energy, c.Needs.Hunger, c.Needs.Social, c.Needs.Comfort, c.Needs.Stress)

	fmt.Fprintf(&sb, "Location: %s (privacy %d/10)\n", p.Location.Name, p.Privacy)
	if len(p.Nearby.Characters) > 0 {
		names := make([]string, len(p.Nearby.Characters))
		for i, e := range p.Nearby.Characters {
			names[i] = fmt.Sprintf("%s (%.1fm)", e.Name, e.Distance)
		}
		fmt.Fprintf(&sb, "Nearby people: %s\n", strings.Join(names, ", "))
	}
	if len(p.Nearby.Objects) > 0 {
		names := make([]string, len(p.Nearby.Objects))
		for i, e := range p.Nearby.Objects {
			names[i] = e.Name
		}
		fmt.Fprintf(&sb, "Nearby objects: %s\n", strings.Join(names, ", "))
	}
	if c.HeldItem != "" {
		fmt.Fprintf(&sb, "Holding: %s\n", c.HeldItem)
	}
	if c.Goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", c.Goal)
	}
	if c.Task != nil {
		fmt.Fprintf(&sb, "Task: %s (%.0f%% done, at %s)\n", c.Task.Name, c.Task.Progress, c.Task.RequiredLocation)
	}
	if n := len(c.ShortTerm); n > 0 {
		start := n - 3
		if start < 0 {
			start = 0
		}
		sb.WriteString("Recent thoughts:\n")
		for _, m := range c.ShortTerm[start:] {
			fmt.Fprintf(&sb, "- %s\n", m.Content)
		}
	}
	intents := make([]string, len(p.LegalIntents))
	for i, a := range p.LegalIntents {
		intents[i] = string(a)
	}
	fmt.Fprintf(&sb, "Possible actions: %s", strings.Join(intents, ", "))
	return sb.String()
}
