package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder is a scheduled notification bound to one post and one creator.
type Reminder struct {
	ReminderID uuid.UUID // UUIDv7
	PostID     uuid.UUID // UUIDv7, FK to posts
	CreatorID  uuid.UUID // UUIDv7, FK to users

	ReminderTime time.Time
	Notified     bool
	SnoozedUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDue returns true if the reminder should be delivered at the given time.
// A snoozed reminder is due only once the snooze window has passed.
func (r *Reminder) IsDue(now time.Time) bool {
	if r.Notified {
		return false
	}
	if r.SnoozedUntil != nil && now.Before(*r.SnoozedUntil) {
		return false
	}
	return !now.Before(r.ReminderTime)
}
