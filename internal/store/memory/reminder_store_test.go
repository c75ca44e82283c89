package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

func newTestReminder(t *testing.T, at time.Time) *models.Reminder {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	postID, err := uuid.NewV7()
	require.NoError(t, err)
	creatorID, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.Reminder{
		ReminderID:   id,
		PostID:       postID,
		CreatorID:    creatorID,
		ReminderTime: at,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestMemoryReminderStore_ListDue(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("past unnotified reminder is due", func(t *testing.T) {
		st := NewReminderStore()

		past := newTestReminder(t, now.Add(-time.Minute))
		future := newTestReminder(t, now.Add(time.Hour))
		require.NoError(t, st.Create(ctx, past))
		require.NoError(t, st.Create(ctx, future))

		due, err := st.ListDue(ctx, now)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.Equal(t, past.ReminderID, due[0].ReminderID)
	})

	t.Run("notified reminder is not due", func(t *testing.T) {
		st := NewReminderStore()

		reminder := newTestReminder(t, now.Add(-time.Minute))
		require.NoError(t, st.Create(ctx, reminder))
		require.NoError(t, st.MarkNotified(ctx, reminder.ReminderID))

		due, err := st.ListDue(ctx, now)
		require.NoError(t, err)
		require.Empty(t, due)
	})

	t.Run("snoozed reminder waits for the snooze window", func(t *testing.T) {
		st := NewReminderStore()

		reminder := newTestReminder(t, now.Add(-time.Hour))
		snooze := now.Add(30 * time.Minute)
		reminder.SnoozedUntil = &snooze
		require.NoError(t, st.Create(ctx, reminder))

		due, err := st.ListDue(ctx, now)
		require.NoError(t, err)
		require.Empty(t, due)

		due, err = st.ListDue(ctx, now.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 1)
	})
}

func TestMemoryReminderStore_MarkNotified(t *testing.T) {
	ctx := context.Background()

	t.Run("mark notified", func(t *testing.T) {
		st := NewReminderStore()

		reminder := newTestReminder(t, time.Now().Add(-time.Minute))
		require.NoError(t, st.Create(ctx, reminder))
		require.NoError(t, st.MarkNotified(ctx, reminder.ReminderID))

		retrieved, err := st.Get(ctx, reminder.ReminderID)
		require.NoError(t, err)
		require.True(t, retrieved.Notified)
	})

	t.Run("unknown reminder returns ErrReminderNotFound", func(t *testing.T) {
		st := NewReminderStore()

		id, err := uuid.NewV7()
		require.NoError(t, err)
		require.ErrorIs(t, st.MarkNotified(ctx, id), store.ErrReminderNotFound)
	})
}
