// Package roster loads the office layout and its characters from YAML.
package roster

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

//go:embed office.yaml
var defaultOffice []byte

// Roster is a serialisable office: where things are and who works there.
type Roster struct {
	Locations  []world.Location      `yaml:"locations"`
	Objects    []world.Object        `yaml:"objects"`
	Characters []actor.CharacterSpec `yaml:"characters"`
}

// Default returns the embedded office.
func Default() (*Roster, error) {
	r, err := Parse(defaultOffice)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded office: %w", err)
	}
	return r, nil
}

// Load reads a roster file; an empty path loads the embedded office.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a roster.
func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks ids are unique and every reference resolves.
func (r *Roster) Validate() error {
	var errs []error
	locations := make(map[string]bool, len(r.Locations))
	for _, l := range r.Locations {
		if l.ID == "" {
			errs = append(errs, errors.New("location without id"))
			continue
		}
		if locations[l.ID] {
			errs = append(errs, fmt.Errorf("duplicate location %q", l.ID))
		}
		locations[l.ID] = true
	}

	seen := make(map[string]bool)
	for _, o := range r.Objects {
		if seen[o.ID] {
			errs = append(errs, fmt.Errorf("duplicate object %q", o.ID))
		}
		seen[o.ID] = true
		if !locations[o.Location] {
			errs = append(errs, fmt.Errorf("object %q is in unknown location %q", o.ID, o.Location))
		}
	}

	for _, c := range r.Characters {
		if c.ID == "" {
			errs = append(errs, errors.New("character without id"))
			continue
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate id %q", c.ID))
		}
		seen[c.ID] = true
		if c.Location != "" && !locations[c.Location] {
			errs = append(errs, fmt.Errorf("character %q is in unknown location %q", c.ID, c.Location))
		}
		if c.Task != nil && c.Task.RequiredLocation != "" && !locations[c.Task.RequiredLocation] {
			errs = append(errs, fmt.Errorf("task %q for %q needs unknown location %q", c.Task.ID, c.ID, c.Task.RequiredLocation))
		}
		if c.HeldItem != "" && !seen[c.HeldItem] {
			errs = append(errs, fmt.Errorf("character %q holds unknown object %q", c.ID, c.HeldItem))
		}
	}
	return errors.Join(errs...)
}

// Build creates the office and its characters. maxQueue overrides each
// character's pending-queue capacity when positive.
func (r *Roster) Build(maxQueue int) (*world.Office, error) {
	office := world.NewOffice()
	for _, l := range r.Locations {
		office.AddLocation(l)
	}
	for _, o := range r.Objects {
		office.AddObject(o)
	}
	for _, spec := range r.Characters {
		spec := spec
		if maxQueue > 0 {
			spec.MaxQueue = maxQueue
		}
		held := spec.HeldItem
		spec.HeldItem = ""
		c, err := actor.NewCharacter(&spec)
		if err != nil {
			return nil, fmt.Errorf("failed to build character %q: %w", spec.ID, err)
		}
		if spec.Location != "" {
			if loc, ok := office.GetLocation(spec.Location); ok && spec.Position == (actor.Position{}) {
				c.PlaceAt(loc.ID, loc.Center)
			}
		}
		office.AddCharacter(c)
		if held != "" {
			if err := office.TakeObject(c, held); err != nil {
				return nil, fmt.Errorf("character %q cannot hold %q: %w", spec.ID, held, err)
			}
		}
	}
	return office, nil
}
