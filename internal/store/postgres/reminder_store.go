package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// ReminderStore implements store.ReminderStore using PostgreSQL.
type ReminderStore struct {
	pool *pgxpool.Pool
}

// NewReminderStore creates a new PostgreSQL-backed reminder store.
func NewReminderStore(pool *pgxpool.Pool) *ReminderStore {
	return &ReminderStore{
		pool: pool,
	}
}

// Create creates a new reminder in the database.
func (s *ReminderStore) Create(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (
			reminder_id, post_id, creator_id, reminder_time, notified,
			snoozed_until, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		reminder.ReminderID,
		reminder.PostID,
		reminder.CreatorID,
		reminder.ReminderTime,
		reminder.Notified,
		reminder.SnoozedUntil,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("reminder_id", reminder.ReminderID.String()).
		Str("post_id", reminder.PostID.String()).
		Msg("Created reminder")

	return nil
}

const reminderSelect = `
	SELECT reminder_id, post_id, creator_id, reminder_time, notified,
		snoozed_until, created_at, updated_at
	FROM reminders
`

func scanReminder(row pgx.Row) (*models.Reminder, error) {
	var reminder models.Reminder
	err := row.Scan(
		&reminder.ReminderID,
		&reminder.PostID,
		&reminder.CreatorID,
		&reminder.ReminderTime,
		&reminder.Notified,
		&reminder.SnoozedUntil,
		&reminder.CreatedAt,
		&reminder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Get retrieves a reminder by ID.
func (s *ReminderStore) Get(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error) {
	query := reminderSelect + ` WHERE reminder_id = $1`

	reminder, err := scanReminder(s.pool.QueryRow(ctx, query, reminderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}

// Update updates an existing reminder.
func (s *ReminderStore) Update(ctx context.Context, reminder *models.Reminder) error {
	reminder.UpdatedAt = time.Now()

	query := `
		UPDATE reminders SET
			reminder_time = $2,
			notified = $3,
			snoozed_until = $4,
			updated_at = $5
		WHERE reminder_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		reminder.ReminderID,
		reminder.ReminderTime,
		reminder.Notified,
		reminder.SnoozedUntil,
		reminder.UpdatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrReminderNotFound
	}

	return nil
}

// Delete deletes a reminder by ID.
func (s *ReminderStore) Delete(ctx context.Context, reminderID uuid.UUID) error {
	query := `DELETE FROM reminders WHERE reminder_id = $1`

	result, err := s.pool.Exec(ctx, query, reminderID)
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrReminderNotFound
	}

	return nil
}

// ListByPost returns all reminders attached to a post, newest first.
func (s *ReminderStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Reminder, error) {
	query := reminderSelect + ` WHERE post_id = $1 ORDER BY created_at DESC`

	return s.list(ctx, query, postID)
}

// ListDue returns unnotified reminders due at or before now, ordered by
// reminder time.
func (s *ReminderStore) ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	query := reminderSelect + `
		WHERE NOT notified
			AND reminder_time <= $1
			AND (snoozed_until IS NULL OR snoozed_until <= $1)
		ORDER BY reminder_time
	`

	return s.list(ctx, query, now)
}

// MarkNotified flags a reminder as delivered.
func (s *ReminderStore) MarkNotified(ctx context.Context, reminderID uuid.UUID) error {
	query := `
		UPDATE reminders SET notified = TRUE, updated_at = $2
		WHERE reminder_id = $1
	`

	result, err := s.pool.Exec(ctx, query, reminderID, time.Now())
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrReminderNotFound
	}

	log.Debug().
		Str("reminder_id", reminderID.String()).
		Msg("Marked reminder notified")

	return nil
}

func (s *ReminderStore) list(ctx context.Context, query string, args ...any) ([]*models.Reminder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}
