package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrAlreadyMember     = errors.New("user is already a member of this workspace")
	ErrNotMember         = errors.New("user is not a member of this workspace")
	ErrPostNotFound      = errors.New("post not found")
	ErrReminderNotFound  = errors.New("reminder not found")
	ErrSessionNotFound   = errors.New("generation session not found")
)

// UserStore defines the interface for user account storage.
type UserStore interface {
	// Create creates a new user. Returns ErrEmailTaken if the email is
	// already registered.
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// WorkspaceStore defines the interface for workspace and membership storage.
type WorkspaceStore interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)
	Update(ctx context.Context, workspace *models.Workspace) error
	Delete(ctx context.Context, workspaceID uuid.UUID) error

	// ListByMember returns all workspaces the user belongs to, ordered by name.
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Workspace, error)

	// AddMember adds a user to a workspace. Returns ErrAlreadyMember if the
	// user is already a member.
	AddMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)

	// ListMembers returns the member roster (id, username, email, role)
	// used for generation assignee selection and workspace views.
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*models.Member, error)
}

// PostStore defines the interface for post storage.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error

	// CreateBatch persists all posts from one generation call atomically,
	// so a mid-batch failure leaves no partial set.
	CreateBatch(ctx context.Context, posts []*models.Post) error

	Get(ctx context.Context, postID uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID uuid.UUID) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Post, error)
}

// ReminderStore defines the interface for reminder storage.
type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	Get(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, reminderID uuid.UUID) error

	// ListByPost returns all reminders attached to a post, newest first.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Reminder, error)

	// ListDue returns unnotified reminders whose reminder time (or snooze
	// time, when set) is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error)

	// MarkNotified flags a reminder as delivered.
	MarkNotified(ctx context.Context, reminderID uuid.UUID) error
}

// SessionStore defines the interface for generation session storage.
// Turns are strictly append-only and listed in creation order.
type SessionStore interface {
	Create(ctx context.Context, session *models.GenerationSession) error
	Get(ctx context.Context, sessionID uuid.UUID) (*models.GenerationSession, error)
	AppendTurn(ctx context.Context, turn *models.SessionTurn) error
	ListTurns(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionTurn, error)
}
