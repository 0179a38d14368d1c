package actor

import (
	"time"

	"github.com/google/uuid"
)

// ActionType is a world-visible action a character can take.
type ActionType string

const (
	ActionIdle        ActionType = "IDLE"
	ActionMoveTo      ActionType = "MOVE_TO"
	ActionWorkOn      ActionType = "WORK_ON"
	ActionDrinkCoffee ActionType = "DRINK_COFFEE"
	ActionEatSnack    ActionType = "EAT_SNACK"
	ActionSocialize   ActionType = "SOCIALIZE"
	ActionPickUp      ActionType = "PICK_UP"
	ActionPutDown     ActionType = "PUT_DOWN"
	ActionThrow       ActionType = "THROW"
	ActionUseItem     ActionType = "USE_ITEM"
	ActionRest        ActionType = "REST"
	ActionTalkTo      ActionType = "TALK_TO"
)

var defaultDurations = map[ActionType]time.Duration{
	ActionIdle:        0,
	ActionMoveTo:      5 * time.Second,
	ActionWorkOn:      20 * time.Second,
	ActionDrinkCoffee: 8 * time.Second,
	ActionEatSnack:    10 * time.Second,
	ActionSocialize:   15 * time.Second,
	ActionPickUp:      2 * time.Second,
	ActionPutDown:     2 * time.Second,
	ActionThrow:       3 * time.Second,
	ActionUseItem:     5 * time.Second,
	ActionRest:        15 * time.Second,
	ActionTalkTo:      10 * time.Second,
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	_, ok := defaultDurations[t]
	return ok
}

// DefaultDuration returns the duration used when an intent does not carry one.
func DefaultDuration(t ActionType) time.Duration {
	return defaultDurations[t]
}

// ActionIntent is a decided action: what to do, to what, for how long.
type ActionIntent struct {
	ID       uuid.UUID     `json:"id"`
	Type     ActionType    `json:"type"`
	Target   string        `json:"target,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Priority int           `json:"priority,omitempty"`
}

// NewActionIntent creates an intent with a fresh ID and the type's default duration.
func NewActionIntent(t ActionType, target string) ActionIntent {
	return ActionIntent{
		ID:       uuid.New(),
		Type:     t,
		Target:   target,
		Duration: DefaultDuration(t),
	}
}

// WithDefaults fills in a missing ID or duration.
func (a ActionIntent) WithDefaults() ActionIntent {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Duration <= 0 {
		a.Duration = DefaultDuration(a.Type)
	}
	return a
}

// ActiveAction is the action a busy character is currently performing.
type ActiveAction struct {
	Intent    ActionIntent `json:"intent"`
	StartedAt time.Time    `json:"started_at"`
}

// DueAt is when the action's nominal duration elapses.
func (a ActiveAction) DueAt() time.Time {
	return a.StartedAt.Add(a.Intent.Duration)
}

// ActionRecord is one entry in a character's action history.
type ActionRecord struct {
	Intent    ActionIntent         `json:"intent"`
	StartedAt time.Time            `json:"started_at"`
	Location  string               `json:"location,omitempty"`
	Effects   map[NeedName]float64 `json:"effects,omitempty"`
}
