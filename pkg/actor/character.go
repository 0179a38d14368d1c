package actor

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwebster45206/d20"
	"gopkg.in/yaml.v3"
)

// ActionState is what a character is doing right now.
type ActionState string

const (
	StateIdle    ActionState = "idle"
	StateMoving  ActionState = "moving"
	StateWorking ActionState = "working"
	StateTalking ActionState = "talking"
	StateBusy    ActionState = "busy"
)

const (
	DefaultMaxQueue   = 5
	DefaultMaxHistory = 50
)

// ErrQueueFull is returned when a character's pending-action queue is at capacity.
var ErrQueueFull = errors.New("pending action queue is full")

// Position is a point on the office floor plan.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Task is the work item assigned to a character.
type Task struct {
	ID               string  `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	RequiredLocation string  `json:"required_location" yaml:"required_location"`
	RequiredSkill    string  `json:"required_skill,omitempty" yaml:"required_skill,omitempty"`
	Progress         float64 `json:"progress" yaml:"progress"` // 0-100
}

// Done reports whether the task is complete.
func (t *Task) Done() bool {
	return t != nil && t.Progress >= 100
}

// CharacterSpec is the serializable definition of a character.
type CharacterSpec struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Role        string         `json:"role,omitempty" yaml:"role,omitempty"`
	Personality []string       `json:"personality,omitempty" yaml:"personality,omitempty"`
	Skills      map[string]int `json:"skills,omitempty" yaml:"skills,omitempty"`
	Needs       *Needs         `json:"needs,omitempty" yaml:"needs,omitempty"`
	Goal        string         `json:"goal,omitempty" yaml:"goal,omitempty"`
	Task        *Task          `json:"task,omitempty" yaml:"task,omitempty"`
	HeldItem    string         `json:"held_item,omitempty" yaml:"held_item,omitempty"`
	Location    string         `json:"location,omitempty" yaml:"location,omitempty"`
	Position    Position       `json:"position" yaml:"position"`
	MaxQueue    int            `json:"max_queue,omitempty" yaml:"max_queue,omitempty"`
}

// Character is the runtime representation of an NPC. Each character owns
// its mutable state exclusively; the mutex only guards against the
// maintenance sweep clearing a stale busy flag while a decision is in flight.
type Character struct {
	ID          string
	Name        string
	Role        string
	Personality []string
	Goal        string

	mu         sync.Mutex
	skills     *d20.Actor
	skillNames []string
	needs      Needs
	mood       Mood
	memory     *Memory
	task       *Task
	heldItem   string
	location   string
	position   Position
	state      ActionState
	busy       bool
	active     *ActiveAction
	queue      []ActionIntent
	maxQueue   int
	history    []ActionRecord
	maxHistory int
}

// NewCharacter builds a character from its spec. Skill levels are held as
// attributes of a d20 actor.
func NewCharacter(spec *CharacterSpec) (*Character, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if strings.TrimSpace(spec.ID) == "" {
		return nil, fmt.Errorf("character id is required")
	}

	skills := make(map[string]int, len(spec.Skills))
	skillNames := make([]string, 0, len(spec.Skills))
	for k, v := range spec.Skills {
		key := strings.ToLower(k)
		skills[key] = v
		skillNames = append(skillNames, key)
	}
	sort.Strings(skillNames)
	skillActor, err := d20.NewActor(spec.ID).
		WithHP(int(MaxNeed)).
		WithAC(10).
		WithAttributes(skills).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build skill set: %w", err)
	}

	needs := DefaultNeeds()
	if spec.Needs != nil {
		needs = spec.Needs.Clamped()
	}
	maxQueue := spec.MaxQueue
	if maxQueue <= 0 {
		maxQueue = DefaultMaxQueue
	}

	c := &Character{
		ID:          spec.ID,
		Name:        spec.Name,
		Role:        spec.Role,
		Personality: append([]string(nil), spec.Personality...),
		Goal:        spec.Goal,
		skills:      skillActor,
		skillNames:  skillNames,
		needs:       needs,
		mood:        ComputeMood(needs),
		memory:      NewMemory(DefaultShortTermCap, DefaultLongTermCap),
		heldItem:    spec.HeldItem,
		location:    spec.Location,
		position:    spec.Position,
		state:       StateIdle,
		maxQueue:    maxQueue,
		maxHistory:  DefaultMaxHistory,
	}
	if c.Name == "" {
		c.Name = spec.ID
	}
	if spec.Task != nil {
		t := *spec.Task
		c.task = &t
	}
	return c, nil
}

// HasTrait reports whether the character carries the personality tag,
// ignoring case.
func (c *Character) HasTrait(trait string) bool {
	for _, p := range c.Personality {
		if strings.EqualFold(p, trait) {
			return true
		}
	}
	return false
}

// HasAnyTrait reports whether the character carries any of the tags.
func (c *Character) HasAnyTrait(traits ...string) bool {
	for _, t := range traits {
		if c.HasTrait(t) {
			return true
		}
	}
	return false
}

// Skill returns the character's level in a skill, or 0 if untrained.
func (c *Character) Skill(name string) int {
	if c.skills == nil {
		return 0
	}
	if v, ok := c.skills.Attribute(strings.ToLower(name)); ok {
		return v
	}
	return 0
}

// Needs returns the current need levels.
func (c *Character) Needs() Needs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needs
}

// Mood returns the mood derived from the current needs.
func (c *Character) Mood() Mood {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mood
}

// ApplyNeeds applies deltas to the needs, clamps them and recomputes mood.
func (c *Character) ApplyNeeds(delta map[NeedName]float64) Needs {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.needs = c.needs.Apply(delta)
	c.mood = ComputeMood(c.needs)
	return c.needs
}

// ResetNeeds replaces the needs wholesale (clamped) and recomputes mood.
func (c *Character) ResetNeeds(n Needs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.needs = n.Clamped()
	c.mood = ComputeMood(c.needs)
}

// Remember adds an entry to short-term memory, promoting an evicted entry
// to long-term memory when it is important.
func (c *Character) Remember(kind MemoryKind, content string, at time.Time) MemoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := NewMemoryEntry(kind, content, at)
	c.memory.Add(e)
	return e
}

// ShortTermMemory returns a copy of short-term memory.
func (c *Character) ShortTermMemory() []MemoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.ShortTerm()
}

// LongTermMemory returns a copy of long-term memory.
func (c *Character) LongTermMemory() []MemoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.LongTerm()
}

// RecallAbout searches both memory tiers.
func (c *Character) RecallAbout(keyword string) []MemoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Search(keyword)
}

// Location returns the id of the location the character is in.
func (c *Character) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// Position returns the character's floor position.
func (c *Character) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// PlaceAt moves the character to a location and position. Used by the
// movement executor once a move completes.
func (c *Character) PlaceAt(location string, pos Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = location
	c.position = pos
}

// Task returns a copy of the assigned task, or nil.
func (c *Character) Task() *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task == nil {
		return nil
	}
	t := *c.task
	return &t
}

// AssignTask replaces the assigned task.
func (c *Character) AssignTask(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t == nil {
		c.task = nil
		return
	}
	cp := *t
	c.task = &cp
}

// AdvanceTask adds progress to the assigned task, capped at 100, and
// returns the new progress. It returns false if no task is assigned.
func (c *Character) AdvanceTask(amount float64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task == nil {
		return 0, false
	}
	c.task.Progress += amount
	if c.task.Progress > 100 {
		c.task.Progress = 100
	}
	if c.task.Progress < 0 {
		c.task.Progress = 0
	}
	return c.task.Progress, true
}

// HeldItem returns the id of the item in hand, or "".
func (c *Character) HeldItem() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heldItem
}

// SetHeldItem replaces the item in hand.
func (c *Character) SetHeldItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heldItem = id
}

// State returns the current action state.
func (c *Character) State() ActionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState changes the action state without touching the busy flag.
func (c *Character) SetState(s ActionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// IsBusy reports whether the character is performing an action.
func (c *Character) IsBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// StartAction marks the character busy with the given action.
func (c *Character) StartAction(intent ActionIntent, state ActionState, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = true
	c.state = state
	c.active = &ActiveAction{Intent: intent, StartedAt: at}
}

// ActiveAction returns a copy of the action in progress, or nil.
func (c *Character) ActiveAction() *ActiveAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	a := *c.active
	return &a
}

// ClearBusy resets the busy flag and returns the action that was active.
// The character is left idle.
func (c *Character) ClearBusy() *ActiveAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.active
	c.busy = false
	c.active = nil
	c.state = StateIdle
	return prev
}

// ClearBusyIf clears the busy flag only if the active action has the given
// ID, so a sweep never clobbers an action started after it looked.
func (c *Character) ClearBusyIf(intent ActionIntent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.Intent.ID != intent.ID {
		return false
	}
	c.busy = false
	c.active = nil
	c.state = StateIdle
	return true
}

// Enqueue appends an intent to the pending queue.
func (c *Character) Enqueue(intent ActionIntent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) >= c.maxQueue {
		return ErrQueueFull
	}
	c.queue = append(c.queue, intent)
	return nil
}

// DequeueNext pops the oldest pending intent.
func (c *Character) DequeueNext() (ActionIntent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return ActionIntent{}, false
	}
	next := c.queue[0]
	c.queue = append([]ActionIntent(nil), c.queue[1:]...)
	return next, true
}

// CancelQueued removes a pending intent by ID.
func (c *Character) CancelQueued(intent ActionIntent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, q := range c.queue {
		if q.ID == intent.ID {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}

// PendingActions returns a copy of the pending queue.
func (c *Character) PendingActions() []ActionIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ActionIntent(nil), c.queue...)
}

// QueueLen returns the number of pending intents.
func (c *Character) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// QueueFull reports whether the pending queue is at capacity.
func (c *Character) QueueFull() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue) >= c.maxQueue
}

// RecordAction appends to the bounded action history.
func (c *Character) RecordAction(rec ActionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec.Effects != nil {
		rec.Effects = maps.Clone(rec.Effects)
	}
	c.history = append(c.history, rec)
	if over := len(c.history) - c.maxHistory; over > 0 {
		c.history = append([]ActionRecord(nil), c.history[over:]...)
	}
}

// History returns a copy of the action history, oldest first.
func (c *Character) History() []ActionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ActionRecord(nil), c.history...)
}

// View returns an immutable copy of the character's decision-time state.
func (c *Character) View() CharacterView {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := CharacterView{
		ID:          c.ID,
		Name:        c.Name,
		Role:        c.Role,
		Personality: append([]string(nil), c.Personality...),
		Needs:       c.needs,
		Mood:        c.mood,
		ShortTerm:   c.memory.ShortTerm(),
		LongTerm:    c.memory.LongTerm(),
		Goal:        c.Goal,
		HeldItem:    c.heldItem,
		Location:    c.location,
		Position:    c.position,
		State:       c.state,
		Busy:        c.busy,
		QueueLength: len(c.queue),
	}
	if c.task != nil {
		t := *c.task
		v.Task = &t
	}
	if c.skills != nil {
		v.Skills = make(map[string]int)
		for _, name := range c.skillNames {
			if val, ok := c.skills.Attribute(name); ok {
				v.Skills[name] = val
			}
		}
	}
	return v
}

// CharacterView is a read-only copy of a character at decision time.
type CharacterView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Role        string         `json:"role,omitempty"`
	Personality []string       `json:"personality,omitempty"`
	Skills      map[string]int `json:"skills,omitempty"`
	Needs       Needs          `json:"needs"`
	Mood        Mood           `json:"mood"`
	ShortTerm   []MemoryEntry  `json:"short_term_memory,omitempty"`
	LongTerm    []MemoryEntry  `json:"long_term_memory,omitempty"`
	Goal        string         `json:"goal,omitempty"`
	Task        *Task          `json:"task,omitempty"`
	HeldItem    string         `json:"held_item,omitempty"`
	Location    string         `json:"location,omitempty"`
	Position    Position       `json:"position"`
	State       ActionState    `json:"state"`
	Busy        bool           `json:"busy"`
	QueueLength int            `json:"queue_length"`
}

// LoadCharacter loads a character spec from a JSON or YAML file and builds
// the character. The filename (without extension) overrides any ID in the file.
func LoadCharacter(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read character file: %w", err)
	}

	var spec CharacterSpec
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &spec)
	default:
		err = json.Unmarshal(data, &spec)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal character spec: %w", err)
	}

	spec.ID = strings.TrimSuffix(filepath.Base(path), ext)
	return NewCharacter(&spec)
}

// MarshalJSON serializes the character's current view.
func (c *Character) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.View())
}
