package world

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

func newCharacter(t *testing.T, id, loc string, pos actor.Position) *actor.Character {
	t.Helper()
	c, err := actor.NewCharacter(&actor.CharacterSpec{ID: id, Location: loc, Position: pos})
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}
	return c
}

func newTestOffice(t *testing.T) *Office {
	t.Helper()
	o := NewOffice()
	o.AddLocation(Location{ID: "kitchen", Name: "Kitchen", Type: LocationKitchen, Center: actor.Position{X: 10, Y: 0}, Amenities: []string{"coffee", "snacks"}})
	o.AddLocation(Location{ID: "office_1", Name: "Corner Office", Type: LocationPrivateOffice, Capacity: 1, Center: actor.Position{X: 0, Y: 10}})
	o.AddObject(Object{ID: "mug", Name: "Mug", Location: "kitchen", Position: actor.Position{X: 11, Y: 0}, Portable: true})
	o.AddObject(Object{ID: "fridge", Name: "Fridge", Location: "kitchen", Position: actor.Position{X: 14, Y: 0}})
	return o
}

func TestOffice_GetNearbyEntities(t *testing.T) {
	o := newTestOffice(t)
	alex := newCharacter(t, "alex", "kitchen", actor.Position{X: 10, Y: 0})
	blair := newCharacter(t, "blair", "kitchen", actor.Position{X: 13, Y: 4})
	casey := newCharacter(t, "casey", "office_1", actor.Position{X: 0, Y: 10})
	for _, c := range []*actor.Character{alex, blair, casey} {
		o.AddCharacter(c)
	}

	n := o.GetNearbyEntities(alex)
	if len(n.Characters) != 1 || n.Characters[0].ID != "blair" {
		t.Fatalf("expected only blair nearby, got %+v", n.Characters)
	}
	if n.Characters[0].Distance != 5 {
		t.Errorf("expected distance 5, got %v", n.Characters[0].Distance)
	}
	if len(n.Objects) != 2 || n.Objects[0].ID != "mug" {
		t.Errorf("expected mug first, got %+v", n.Objects)
	}
	if _, ok := n.Find("fridge"); !ok {
		t.Error("expected Find to locate the fridge")
	}
}

func TestOffice_MoveCharacterTo(t *testing.T) {
	o := newTestOffice(t)
	ctx := context.Background()
	alex := newCharacter(t, "alex", "kitchen", actor.Position{})
	blair := newCharacter(t, "blair", "kitchen", actor.Position{})
	o.AddCharacter(alex)
	o.AddCharacter(blair)

	if o.MoveCharacterTo(ctx, alex, "nowhere") {
		t.Error("expected unknown target to be refused")
	}
	if !o.MoveCharacterTo(ctx, alex, "office_1") {
		t.Fatal("expected move to office to succeed")
	}
	if alex.Location() != "office_1" || alex.Position() != (actor.Position{X: 0, Y: 10}) {
		t.Errorf("unexpected placement %s %+v", alex.Location(), alex.Position())
	}
	if o.MoveCharacterTo(ctx, blair, "office_1") {
		t.Error("expected full office to refuse a second occupant")
	}
	if !o.MoveCharacterTo(ctx, blair, "mug") {
		t.Error("expected move to an object to succeed")
	}
	if !o.MoveCharacterTo(ctx, alex, "blair") {
		t.Error("expected move to a character to succeed")
	}
	if alex.Location() != "kitchen" {
		t.Errorf("expected alex in kitchen, got %s", alex.Location())
	}
}

func TestOffice_Inventory(t *testing.T) {
	o := newTestOffice(t)
	alex := newCharacter(t, "alex", "kitchen", actor.Position{X: 10, Y: 0})
	o.AddCharacter(alex)

	if err := o.TakeObject(alex, "fridge"); !errors.Is(err, ErrNotPortable) {
		t.Errorf("expected ErrNotPortable, got %v", err)
	}
	if err := o.TakeObject(alex, "ghost"); !errors.Is(err, ErrUnknownObject) {
		t.Errorf("expected ErrUnknownObject, got %v", err)
	}
	if err := o.TakeObject(alex, "mug"); err != nil {
		t.Fatalf("TakeObject failed: %v", err)
	}
	if alex.HeldItem() != "mug" {
		t.Errorf("expected alex holding mug, got %q", alex.HeldItem())
	}
	if n := o.GetNearbyEntities(alex); len(n.Objects) != 1 {
		t.Errorf("held mug must not be perceived on the floor, got %+v", n.Objects)
	}

	if err := o.PlaceObject(alex, "fridge"); !errors.Is(err, ErrNotHolding) {
		t.Errorf("expected ErrNotHolding, got %v", err)
	}
	if err := o.PlaceObject(alex, "mug"); err != nil {
		t.Fatalf("PlaceObject failed: %v", err)
	}
	mug, _ := o.GetObject("mug")
	if mug.HeldBy != "" || mug.Location != "kitchen" || alex.HeldItem() != "" {
		t.Errorf("unexpected state after placing: %+v held=%q", mug, alex.HeldItem())
	}
}

func TestOffice_RemoveCharacterDropsItem(t *testing.T) {
	o := newTestOffice(t)
	alex := newCharacter(t, "alex", "kitchen", actor.Position{X: 12, Y: 1})
	o.AddCharacter(alex)
	if err := o.TakeObject(alex, "mug"); err != nil {
		t.Fatalf("TakeObject failed: %v", err)
	}

	o.RemoveCharacter("alex")
	if _, ok := o.GetCharacter("alex"); ok {
		t.Error("expected character removed")
	}
	mug, _ := o.GetObject("mug")
	if mug.HeldBy != "" || mug.Location != "kitchen" {
		t.Errorf("expected mug dropped in kitchen, got %+v", mug)
	}
}

func TestNeedEffectTable_ForCopies(t *testing.T) {
	fx := NeedEffects.For(actor.ActionDrinkCoffee)
	fx[actor.NeedEnergy] = 100
	if NeedEffects[actor.ActionDrinkCoffee][actor.NeedEnergy] != 3 {
		t.Error("For must return a copy")
	}
	if NeedEffects.For(actor.ActionIdle) != nil {
		t.Error("expected nil effects for IDLE")
	}
}
