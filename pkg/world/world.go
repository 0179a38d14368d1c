// Package world defines the collaborators the NPC pipeline consumes
// (perception, movement, character registry, inventory, events) and an
// in-memory office that implements all of them.
package world

import (
	"context"
	"math"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// EntityKind tells nearby characters and objects apart.
type EntityKind string

const (
	KindCharacter EntityKind = "character"
	KindObject    EntityKind = "object"
)

// Distance returns the euclidean distance between two floor positions.
func Distance(a, b actor.Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// NearbyEntity is a character or object within perception range.
type NearbyEntity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     EntityKind `json:"kind"`
	Distance float64    `json:"distance"`
}

// Nearby is what a character can currently perceive, nearest first.
type Nearby struct {
	Characters []NearbyEntity `json:"characters,omitempty"`
	Objects    []NearbyEntity `json:"objects,omitempty"`
}

// Find returns the nearby entity with the given id, if perceived.
func (n Nearby) Find(id string) (NearbyEntity, bool) {
	for _, group := range [][]NearbyEntity{n.Characters, n.Objects} {
		for _, e := range group {
			if e.ID == id {
				return e, true
			}
		}
	}
	return NearbyEntity{}, false
}

// LocationType drives privacy and action suitability.
type LocationType string

const (
	LocationPrivateOffice LocationType = "private_office"
	LocationRestroom      LocationType = "restroom"
	LocationMeetingRoom   LocationType = "meeting_room"
	LocationBreakRoom     LocationType = "break_room"
	LocationKitchen       LocationType = "kitchen"
	LocationOpenPlan      LocationType = "open_plan"
	LocationHallway       LocationType = "hallway"
)

// Location is a named area of the office.
type Location struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Type        LocationType   `json:"type" yaml:"type"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Capacity    int            `json:"capacity,omitempty" yaml:"capacity,omitempty"` // 0 means unbounded
	Center      actor.Position `json:"center" yaml:"center"`
	Amenities   []string       `json:"amenities,omitempty" yaml:"amenities,omitempty"` // e.g. coffee, snacks, desk
}

// HasAmenity reports whether the location offers the amenity.
func (l Location) HasAmenity(name string) bool {
	for _, a := range l.Amenities {
		if a == name {
			return true
		}
	}
	return false
}

// Object is a thing in the office. Portable objects can be picked up.
type Object struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Location string         `json:"location" yaml:"location"` // empty while held
	Position actor.Position `json:"position" yaml:"position"`
	Portable bool           `json:"portable,omitempty" yaml:"portable,omitempty"`
	Usable   bool           `json:"usable,omitempty" yaml:"usable,omitempty"`
	HeldBy   string         `json:"held_by,omitempty" yaml:"-"`
}

// Perception answers questions about what a character can see.
type Perception interface {
	GetNearbyEntities(c *actor.Character) Nearby
	IsValidLocation(id string) bool
	GetLocation(id string) (Location, bool)
	GetObject(id string) (Object, bool)
}

// MovementExecutor moves characters. The move may complete later; the
// return value only reports whether it was accepted.
type MovementExecutor interface {
	MoveCharacterTo(ctx context.Context, c *actor.Character, target string) bool
}

// Registry looks up characters.
type Registry interface {
	GetCharacter(id string) (*actor.Character, bool)
	GetCharactersInLocation(locationID string) []*actor.Character
}

// Inventory moves objects between the floor and a character's hands.
type Inventory interface {
	TakeObject(c *actor.Character, objectID string) error
	PlaceObject(c *actor.Character, objectID string) error
}

// EventSink receives fire-and-forget notifications. Each call is delivered
// at most once; implementations must not block the caller.
type EventSink interface {
	FireEvent(ctx context.Context, name string, payload map[string]any)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, name string, payload map[string]any)

func (f EventSinkFunc) FireEvent(ctx context.Context, name string, payload map[string]any) {
	f(ctx, name, payload)
}

// DiscardEvents drops every event.
var DiscardEvents EventSink = EventSinkFunc(func(context.Context, string, map[string]any) {})

// NeedEffectTable maps an action type to the need deltas it applies.
type NeedEffectTable map[actor.ActionType]map[actor.NeedName]float64

// NeedEffects is the default need-effect table.
var NeedEffects = NeedEffectTable{
	actor.ActionDrinkCoffee: {actor.NeedEnergy: 3, actor.NeedStress: -0.5},
	actor.ActionEatSnack:    {actor.NeedHunger: 4, actor.NeedComfort: 0.5},
	actor.ActionSocialize:   {actor.NeedSocial: 3, actor.NeedStress: -1},
	actor.ActionWorkOn:      {actor.NeedEnergy: -1, actor.NeedStress: 1, actor.NeedHunger: -0.5},
	actor.ActionRest:        {actor.NeedEnergy: 2, actor.NeedComfort: 1, actor.NeedStress: -1},
	actor.ActionMoveTo:      {actor.NeedEnergy: -0.2},
	actor.ActionThrow:       {actor.NeedStress: -1.5},
	actor.ActionTalkTo:      {actor.NeedSocial: 1},
	actor.ActionUseItem:     {actor.NeedComfort: 0.5},
}

// For returns a copy of the deltas for an action type, or nil.
func (t NeedEffectTable) For(a actor.ActionType) map[actor.NeedName]float64 {
	src, ok := t[a]
	if !ok {
		return nil
	}
	out := make(map[actor.NeedName]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
