package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace represents a tenant in the system.
// Each workspace has an owner, a set of members, and owns posts and
// generation sessions.
type Workspace struct {
	WorkspaceID uuid.UUID // UUIDv7
	Name        string
	OwnerID     uuid.UUID // UUIDv7, FK to users

	Industry    string
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a workspace member summary used for roster embedding and the
// workspace projection. It carries no workspace back-references.
type Member struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
}
