package response

import (
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// InteractionRange is how close a character must be to pick something up
// or talk to someone.
const InteractionRange = 2.0

// Amenities a location must offer for restorative actions. Kitchens and
// break rooms offer both implicitly.
const (
	AmenityCoffee = "coffee"
	AmenitySnacks = "snacks"
)

type validator func(p *Processor, c *actor.Character, intent actor.ActionIntent) error

var validators = map[actor.ActionType]validator{
	actor.ActionIdle:        func(*Processor, *actor.Character, actor.ActionIntent) error { return nil },
	actor.ActionMoveTo:      validateMove,
	actor.ActionWorkOn:      validateWork,
	actor.ActionDrinkCoffee: validateAmenity(AmenityCoffee),
	actor.ActionEatSnack:    validateAmenity(AmenitySnacks),
	actor.ActionSocialize:   validateSocialize,
	actor.ActionPickUp:      validatePickUp,
	actor.ActionPutDown:     validateHolding,
	actor.ActionThrow:       validateHolding,
	actor.ActionUseItem:     validateUse,
	actor.ActionRest:        validateRest,
	actor.ActionTalkTo:      validateTalk,
}

func (p *Processor) validate(c *actor.Character, intent actor.ActionIntent) error {
	v, ok := validators[intent.Type]
	if !ok {
		return fmt.Errorf("%w: no validator for %s", ErrValidation, intent.Type)
	}
	return v(p, c, intent)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func validateMove(p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	if intent.Target == "" {
		return invalid("MOVE_TO needs a target")
	}
	if intent.Target == c.Location() || intent.Target == c.ID {
		return invalid("already at %s", intent.Target)
	}
	if p.perception.IsValidLocation(intent.Target) {
		return nil
	}
	if _, ok := p.perception.GetObject(intent.Target); ok {
		return nil
	}
	if _, ok := p.registry.GetCharacter(intent.Target); ok {
		return nil
	}
	return invalid("unknown move target %q", intent.Target)
}

func validateWork(_ *Processor, c *actor.Character, _ actor.ActionIntent) error {
	task := c.Task()
	if task == nil {
		return invalid("no assigned task")
	}
	if task.Done() {
		return invalid("task %s is already complete", task.ID)
	}
	if task.RequiredLocation != "" && task.RequiredLocation != c.Location() {
		return invalid("task %s must be worked on at %s", task.ID, task.RequiredLocation)
	}
	return nil
}

func validateAmenity(amenity string) validator {
	return func(p *Processor, c *actor.Character, _ actor.ActionIntent) error {
		loc, ok := p.perception.GetLocation(c.Location())
		if !ok {
			return invalid("unknown location %q", c.Location())
		}
		if loc.HasAmenity(amenity) || loc.Type == world.LocationKitchen || loc.Type == world.LocationBreakRoom {
			return nil
		}
		return invalid("%s has no %s", loc.Name, amenity)
	}
}

func validateSocialize(p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	nearby := p.perception.GetNearbyEntities(c)
	if intent.Target != "" {
		if _, ok := nearby.Find(intent.Target); !ok {
			return invalid("%s is not nearby", intent.Target)
		}
		return nil
	}
	if len(nearby.Characters) == 0 {
		return invalid("nobody to socialize with")
	}
	return nil
}

func validatePickUp(p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	if c.HeldItem() != "" {
		return invalid("hands are full")
	}
	obj, ok := p.perception.GetObject(intent.Target)
	if !ok {
		return invalid("unknown object %q", intent.Target)
	}
	if !obj.Portable {
		return invalid("%s is not portable", obj.Name)
	}
	if obj.HeldBy != "" {
		return invalid("%s is held by %s", obj.Name, obj.HeldBy)
	}
	return inRange(c, obj.Location, obj.Position, obj.Name)
}

func validateHolding(_ *Processor, c *actor.Character, intent actor.ActionIntent) error {
	held := c.HeldItem()
	if held == "" {
		return invalid("not holding anything")
	}
	if intent.Target != "" && intent.Target != held {
		return invalid("not holding %s", intent.Target)
	}
	return nil
}

func validateUse(p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	obj, ok := p.perception.GetObject(intent.Target)
	if !ok {
		return invalid("unknown object %q", intent.Target)
	}
	if !obj.Usable {
		return invalid("%s cannot be used", obj.Name)
	}
	if obj.HeldBy == c.ID {
		return nil
	}
	if obj.HeldBy != "" {
		return invalid("%s is held by %s", obj.Name, obj.HeldBy)
	}
	return inRange(c, obj.Location, obj.Position, obj.Name)
}

func validateRest(p *Processor, c *actor.Character, _ actor.ActionIntent) error {
	loc, ok := p.perception.GetLocation(c.Location())
	if !ok {
		return invalid("unknown location %q", c.Location())
	}
	if loc.Type == world.LocationHallway {
		return invalid("cannot rest in %s", loc.Name)
	}
	return nil
}

func validateTalk(p *Processor, c *actor.Character, intent actor.ActionIntent) error {
	if intent.Target == "" || intent.Target == c.ID {
		return invalid("TALK_TO needs another character")
	}
	other, ok := p.registry.GetCharacter(intent.Target)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCharacter, intent.Target)
	}
	return inRange(c, other.Location(), other.Position(), other.Name)
}

// inRange checks that a thing is in the character's location and within
// InteractionRange of it.
func inRange(c *actor.Character, location string, pos actor.Position, name string) error {
	if location != c.Location() {
		return invalid("%s is not here", name)
	}
	if d := world.Distance(c.Position(), pos); d > InteractionRange {
		return invalid("%s is %.1f units away", name, d)
	}
	return nil
}
