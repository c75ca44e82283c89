package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroniclehq/chronicle/internal/config"
	"github.com/chroniclehq/chronicle/internal/logger"
	"github.com/chroniclehq/chronicle/internal/notify"
	"github.com/chroniclehq/chronicle/internal/reminder"
	"github.com/chroniclehq/chronicle/internal/telemetry"
)

type SchedulerCmd struct {
	Interval time.Duration `help:"reminder sweep interval" default:"1m" env:"CHRONICLE_SCHEDULER_INTERVAL"`

	ServicesConfig string `help:"path to the external-services YAML config" env:"CHRONICLE_SERVICES_CONFIG" required:""`

	Tracing bool `help:"enable telemetry export" default:"false" env:"CHRONICLE_TRACING"`

	Store StoreFlags `embed:""`
}

func (c *SchedulerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("version", globals.Version).
		Dur("interval", c.Interval).
		Msg("Starting reminder scheduler")

	if c.Tracing {
		shutdown, err := telemetry.InitTelemetry(ctx, "chronicle-scheduler", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Failed to shutdown telemetry")
				}
			}()
		}
	}

	stores, err := c.Store.buildStores(ctx)
	if err != nil {
		return err
	}

	services, err := config.LoadServices(c.ServicesConfig)
	if err != nil {
		return err
	}

	notifier, err := notify.NewClient(notify.ClientConfig{
		BaseURL:   services.Push.BaseURL,
		ServerKey: services.Push.ServerKey,
	})
	if err != nil {
		return err
	}

	checker := reminder.NewChecker(stores.Reminders, stores.Posts, stores.Users, notifier)
	runCtx := log.WithContext(ctx)

	// Sweeps run back to back on the same goroutine, so a slow sweep
	// delays the next tick instead of overlapping it.
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			return nil
		case <-ticker.C:
			if err := checker.Run(runCtx, time.Now()); err != nil {
				log.Error().Err(err).Msg("reminder sweep failed")
			}
		}
	}
}
