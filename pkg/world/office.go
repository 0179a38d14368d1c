package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrNotPortable     = errors.New("object is not portable")
	ErrAlreadyHeld     = errors.New("object is already held")
	ErrHandsFull       = errors.New("character is already holding something")
	ErrNotHolding      = errors.New("character is not holding that object")
	ErrUnknownLocation = errors.New("unknown location")
)

// Office is an in-memory world. It implements Perception, MovementExecutor,
// Registry and Inventory. Moves complete immediately.
type Office struct {
	mu         sync.RWMutex
	locations  map[string]Location
	objects    map[string]*Object
	characters map[string]*actor.Character
}

// NewOffice creates an empty office.
func NewOffice() *Office {
	return &Office{
		locations:  make(map[string]Location),
		objects:    make(map[string]*Object),
		characters: make(map[string]*actor.Character),
	}
}

// AddLocation registers or replaces a location.
func (o *Office) AddLocation(l Location) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.locations[l.ID] = l
}

// AddObject registers or replaces an object.
func (o *Office) AddObject(obj Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cp := obj
	o.objects[obj.ID] = &cp
}

// AddCharacter registers a character.
func (o *Office) AddCharacter(c *actor.Character) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.characters[c.ID] = c
}

// RemoveCharacter unregisters a character. Anything it was holding is
// dropped where it stood.
func (o *Office) RemoveCharacter(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.characters[id]
	if !ok {
		return
	}
	for _, obj := range o.objects {
		if obj.HeldBy == id {
			obj.HeldBy = ""
			obj.Location = c.Location()
			obj.Position = c.Position()
		}
	}
	delete(o.characters, id)
}

// Characters returns all registered characters sorted by id.
func (o *Office) Characters() []*actor.Character {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*actor.Character, 0, len(o.characters))
	for _, c := range o.characters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Locations returns all locations sorted by id.
func (o *Office) Locations() []Location {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Location, 0, len(o.locations))
	for _, l := range o.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (o *Office) GetCharacter(id string) (*actor.Character, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	c, ok := o.characters[id]
	return c, ok
}

func (o *Office) GetCharactersInLocation(locationID string) []*actor.Character {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.charactersIn(locationID)
}

func (o *Office) charactersIn(locationID string) []*actor.Character {
	var out []*actor.Character
	for _, c := range o.characters {
		if c.Location() == locationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (o *Office) IsValidLocation(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.locations[id]
	return ok
}

func (o *Office) GetLocation(id string) (Location, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	l, ok := o.locations[id]
	return l, ok
}

func (o *Office) GetObject(id string) (Object, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	obj, ok := o.objects[id]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// GetNearbyEntities returns the other characters and the floor objects in
// the character's location, nearest first.
func (o *Office) GetNearbyEntities(c *actor.Character) Nearby {
	o.mu.RLock()
	defer o.mu.RUnlock()

	loc := c.Location()
	pos := c.Position()
	var n Nearby
	for _, other := range o.charactersIn(loc) {
		if other.ID == c.ID {
			continue
		}
		n.Characters = append(n.Characters, NearbyEntity{
			ID:       other.ID,
			Name:     other.Name,
			Kind:     KindCharacter,
			Distance: Distance(pos, other.Position()),
		})
	}
	for _, obj := range o.objects {
		if obj.HeldBy != "" || obj.Location != loc {
			continue
		}
		n.Objects = append(n.Objects, NearbyEntity{
			ID:       obj.ID,
			Name:     obj.Name,
			Kind:     KindObject,
			Distance: Distance(pos, obj.Position),
		})
	}
	byDistance := func(s []NearbyEntity) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].Distance == s[j].Distance {
				return s[i].ID < s[j].ID
			}
			return s[i].Distance < s[j].Distance
		})
	}
	byDistance(n.Characters)
	byDistance(n.Objects)
	return n
}

// MoveCharacterTo moves a character to a location, or next to an object or
// another character. It refuses unknown targets and full locations.
func (o *Office) MoveCharacterTo(_ context.Context, c *actor.Character, target string) bool {
	o.mu.RLock()
	locID, pos, ok := o.resolveTarget(target)
	if ok {
		if l := o.locations[locID]; l.Capacity > 0 && c.Location() != locID && len(o.charactersIn(locID)) >= l.Capacity {
			ok = false
		}
	}
	o.mu.RUnlock()
	if !ok {
		return false
	}
	c.PlaceAt(locID, pos)
	return true
}

func (o *Office) resolveTarget(target string) (string, actor.Position, bool) {
	if l, ok := o.locations[target]; ok {
		return l.ID, l.Center, true
	}
	if obj, ok := o.objects[target]; ok && obj.HeldBy == "" {
		if _, known := o.locations[obj.Location]; known {
			return obj.Location, obj.Position, true
		}
	}
	if other, ok := o.characters[target]; ok {
		return other.Location(), other.Position(), true
	}
	return "", actor.Position{}, false
}

// TakeObject moves a portable floor object into the character's hands.
func (o *Office) TakeObject(c *actor.Character, objectID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.objects[objectID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, objectID)
	}
	if !obj.Portable {
		return fmt.Errorf("%w: %s", ErrNotPortable, objectID)
	}
	if obj.HeldBy != "" {
		return fmt.Errorf("%w: %s", ErrAlreadyHeld, objectID)
	}
	if c.HeldItem() != "" {
		return ErrHandsFull
	}
	obj.HeldBy = c.ID
	obj.Location = ""
	c.SetHeldItem(obj.ID)
	return nil
}

// PlaceObject puts the held object down at the character's position.
func (o *Office) PlaceObject(c *actor.Character, objectID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.objects[objectID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, objectID)
	}
	if obj.HeldBy != c.ID || c.HeldItem() != objectID {
		return fmt.Errorf("%w: %s", ErrNotHolding, objectID)
	}
	loc := c.Location()
	if _, known := o.locations[loc]; !known {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, loc)
	}
	obj.HeldBy = ""
	obj.Location = loc
	obj.Position = c.Position()
	c.SetHeldItem("")
	return nil
}
