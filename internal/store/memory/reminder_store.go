package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// ReminderStore implements store.ReminderStore using in-memory storage.
// Data is lost on restart; intended for tests and local development.
type ReminderStore struct {
	mu sync.RWMutex

	reminders map[uuid.UUID]*models.Reminder // reminder_id -> Reminder
}

// NewReminderStore creates a new in-memory reminder store.
func NewReminderStore() *ReminderStore {
	return &ReminderStore{
		reminders: make(map[uuid.UUID]*models.Reminder),
	}
}

// Create creates a new reminder in memory.
func (s *ReminderStore) Create(ctx context.Context, reminder *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *reminder
	s.reminders[reminder.ReminderID] = &clone

	return nil
}

// Get retrieves a reminder by ID.
func (s *ReminderStore) Get(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminder, exists := s.reminders[reminderID]
	if !exists {
		return nil, store.ErrReminderNotFound
	}

	clone := *reminder
	return &clone, nil
}

// Update updates an existing reminder.
func (s *ReminderStore) Update(ctx context.Context, reminder *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[reminder.ReminderID]; !exists {
		return store.ErrReminderNotFound
	}

	reminder.UpdatedAt = time.Now()

	clone := *reminder
	s.reminders[reminder.ReminderID] = &clone

	return nil
}

// Delete deletes a reminder by ID.
func (s *ReminderStore) Delete(ctx context.Context, reminderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[reminderID]; !exists {
		return store.ErrReminderNotFound
	}

	delete(s.reminders, reminderID)

	return nil
}

// ListByPost returns all reminders attached to a post, newest first.
func (s *ReminderStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reminders []*models.Reminder
	for _, reminder := range s.reminders {
		if reminder.PostID != postID {
			continue
		}
		clone := *reminder
		reminders = append(reminders, &clone)
	}

	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].CreatedAt.After(reminders[j].CreatedAt)
	})

	return reminders, nil
}

// ListDue returns unnotified reminders due at or before now.
func (s *ReminderStore) ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*models.Reminder
	for _, reminder := range s.reminders {
		if !reminder.IsDue(now) {
			continue
		}
		clone := *reminder
		due = append(due, &clone)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ReminderTime.Before(due[j].ReminderTime)
	})

	return due, nil
}

// MarkNotified flags a reminder as delivered.
func (s *ReminderStore) MarkNotified(ctx context.Context, reminderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminder, exists := s.reminders[reminderID]
	if !exists {
		return store.ErrReminderNotFound
	}

	reminder.Notified = true
	reminder.UpdatedAt = time.Now()

	return nil
}
