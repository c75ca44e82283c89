package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system.
// Users belong to one or more workspaces and can be assigned posts.
type User struct {
	UserID   uuid.UUID // UUIDv7
	Username string
	Email    string // unique

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to API responses.
	PasswordHash string

	// Role is a free-text label (e.g. "designer", "copywriter") used to
	// bias assignee selection during post generation.
	Role string

	// DeviceToken is the push-notification target for reminder delivery.
	// Empty when the user has not registered a device.
	DeviceToken string

	CreatedAt time.Time
	UpdatedAt time.Time
}
