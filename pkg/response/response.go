// Package response turns a character's decision into committed world
// state: it validates and executes actions, generates and records
// dialogue, resolves conflicts through the pending-action queue and
// recovers from every failure into an idle, non-busy character.
package response

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// Type is the kind of decision a response carries.
type Type string

const (
	TypeAction   Type = "ACTION"
	TypeDialogue Type = "DIALOGUE"
	TypeMixed    Type = "MIXED"
	TypeIdle     Type = "IDLE"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrValidation        = errors.New("action validation failed")
	ErrExecution         = errors.New("action execution failed")
	ErrUnknownCharacter  = errors.New("unknown character")
	ErrQueueFull         = actor.ErrQueueFull
)

// Response is a decision for one character. Dialogue is the message being
// answered; an empty Dialogue asks for an opener. Target is the listener.
type Response struct {
	Type      Type                `json:"type"`
	Action    *actor.ActionIntent `json:"action,omitempty"`
	Dialogue  string              `json:"dialogue,omitempty"`
	Target    string              `json:"target,omitempty"`
	Reasoning string              `json:"reasoning,omitempty"`
}

// Idle is the response that does nothing.
func Idle(reason string) Response {
	return Response{Type: TypeIdle, Reasoning: reason}
}

// Act wraps an action intent.
func Act(intent actor.ActionIntent) Response {
	return Response{Type: TypeAction, Action: &intent}
}

// Say answers message from target.
func Say(target, message string) Response {
	return Response{Type: TypeDialogue, Target: target, Dialogue: message}
}

// Validate checks the response's shape. It does not consult the world.
func (r Response) Validate() error {
	switch r.Type {
	case TypeIdle, TypeDialogue:
		return nil
	case TypeAction:
		if r.Action == nil {
			return fmt.Errorf("%w: ACTION without an action", ErrMalformedResponse)
		}
		return validIntent(r.Action)
	case TypeMixed:
		if r.Action == nil && !r.hasDialogue() {
			return fmt.Errorf("%w: MIXED needs an action or dialogue", ErrMalformedResponse)
		}
		if r.Action != nil {
			return validIntent(r.Action)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing type", ErrMalformedResponse)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedResponse, r.Type)
	}
}

func validIntent(a *actor.ActionIntent) error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown action type %q", ErrMalformedResponse, a.Type)
	}
	if a.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrMalformedResponse)
	}
	return nil
}

// hasDialogue reports whether a MIXED response carries a dialogue part.
func (r Response) hasDialogue() bool {
	return r.Dialogue != "" || r.Target != ""
}

// ParseResponse decodes and validates a JSON response.
func ParseResponse(data []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := r.Validate(); err != nil {
		return Response{}, err
	}
	if r.Action != nil {
		filled := r.Action.WithDefaults()
		r.Action = &filled
	}
	return r, nil
}
