package storage

import (
	"context"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// CharacterRecord is the last published view of a character.
type CharacterRecord struct {
	View      actor.CharacterView `json:"view"`
	WorkerID  string              `json:"worker_id,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Storage persists character views so processes without the engine, such as
// the API, can read the office.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveCharacter stores the view and adds the character to the index.
	SaveCharacter(ctx context.Context, rec *CharacterRecord) error
	// LoadCharacter returns nil, nil when the character is unknown.
	LoadCharacter(ctx context.Context, id string) (*CharacterRecord, error)
	DeleteCharacter(ctx context.Context, id string) error
	// ListCharacters returns the indexed ids in sorted order.
	ListCharacters(ctx context.Context) ([]string, error)
}
