package models

import (
	"time"

	"github.com/google/uuid"
)

// PostType identifies which generated asset a post is built around.
const (
	PostTypeImage = "image"
	PostTypeVideo = "video"
)

// Post is a schedulable content item, either created manually or produced
// by a generation session.
type Post struct {
	PostID      uuid.UUID // UUIDv7
	WorkspaceID uuid.UUID // UUIDv7, FK to workspaces
	CreatorID   uuid.UUID // UUIDv7, FK to users

	// AssigneeID must be a member of the post's workspace. Enforced by the
	// generation roster and re-checked when drafts are persisted.
	AssigneeID *uuid.UUID

	// SessionID links back to the generation session that produced this
	// post. Nil for manually created posts.
	SessionID *uuid.UUID

	Description  string
	PostText     string // caption
	ImagePrompt  string
	VideoPrompt  string
	PostType     string // "image" or "video"
	ScheduleTime time.Time

	// Paths to generated assets under the media directory, empty until the
	// corresponding asset has been generated.
	ImagePath string
	VideoPath string

	Completed bool
	Deleted   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
