package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationSession groups a sequence of generation exchanges for one
// workspace. A session belongs to exactly one workspace for its lifetime
// and is immutable except for appended turns.
type GenerationSession struct {
	SessionID   uuid.UUID // UUIDv7
	WorkspaceID uuid.UUID // UUIDv7, FK to workspaces
	CreatorID   uuid.UUID // UUIDv7, FK to users

	CreatedAt time.Time
}

// SessionTurn is one prompt/response exchange of a generation session.
// Turns are append-only and replayed in creation order to reconstruct the
// conversation context on each model call.
type SessionTurn struct {
	TurnID    uuid.UUID // UUIDv7
	SessionID uuid.UUID // UUIDv7, FK to generation_sessions

	Prompt   string
	Response string // raw model reply, persisted verbatim

	CreatedAt time.Time
}
