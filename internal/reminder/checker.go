package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/notify"
	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/internal/telemetry"
)

// Checker sweeps due reminders and delivers one push notification per
// reminder. Each reminder is marked notified immediately after its send
// succeeds, so a crash or a failed send mid-sweep never re-delivers the
// reminders that already went out, and never silently drops the rest.
type Checker struct {
	reminders store.ReminderStore
	posts     store.PostStore
	users     store.UserStore
	notifier  notify.Notifier
}

// NewChecker creates a reminder checker.
func NewChecker(reminders store.ReminderStore, posts store.PostStore, users store.UserStore, notifier notify.Notifier) *Checker {
	return &Checker{
		reminders: reminders,
		posts:     posts,
		users:     users,
		notifier:  notifier,
	}
}

// Run performs one sweep: list due reminders, deliver each, mark each as
// notified on success. Per-reminder failures are logged and skipped; the
// sweep continues with the rest.
func (c *Checker) Run(ctx context.Context, now time.Time) error {
	logger := zerolog.Ctx(ctx)
	metrics := telemetry.GetMetrics()
	start := time.Now()
	defer func() {
		metrics.ReminderSweepDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	}()

	due, err := c.reminders.ListDue(ctx, now)
	if err != nil {
		return err
	}

	if len(due) == 0 {
		return nil
	}

	logger.Info().Int("count", len(due)).Msg("delivering due reminders")

	for _, reminder := range due {
		if err := c.deliver(ctx, reminder); err != nil {
			metrics.ReminderSendErrorsTotal.Add(ctx, 1)
			logger.Error().Err(err).
				Str("reminder_id", reminder.ReminderID.String()).
				Msg("failed to deliver reminder")
			continue
		}

		// Mark right away. Deferring the update to the end of the sweep
		// would re-deliver everything if a later reminder fails.
		if err := c.reminders.MarkNotified(ctx, reminder.ReminderID); err != nil {
			logger.Error().Err(err).
				Str("reminder_id", reminder.ReminderID.String()).
				Msg("failed to mark reminder notified")
			continue
		}

		metrics.RemindersSentTotal.Add(ctx, 1)
	}

	return nil
}

func (c *Checker) deliver(ctx context.Context, reminder *models.Reminder) error {
	post, err := c.posts.Get(ctx, reminder.PostID)
	if err != nil {
		return err
	}

	creator, err := c.users.Get(ctx, reminder.CreatorID)
	if err != nil {
		return err
	}

	if creator.DeviceToken == "" {
		zerolog.Ctx(ctx).Debug().
			Str("reminder_id", reminder.ReminderID.String()).
			Str("user_id", creator.UserID.String()).
			Msg("skipping reminder, user has no device token")
		return nil
	}

	return c.notifier.Send(ctx, creator.DeviceToken, "Reminder", "Reminder: "+post.PostText)
}
