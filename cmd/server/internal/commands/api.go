package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/client"
	"github.com/chroniclehq/chronicle/internal/config"
	"github.com/chroniclehq/chronicle/internal/genai"
	"github.com/chroniclehq/chronicle/internal/httpapi"
	"github.com/chroniclehq/chronicle/internal/logger"
	"github.com/chroniclehq/chronicle/internal/media"
	"github.com/chroniclehq/chronicle/internal/telemetry"
)

type APICmd struct {
	Listen      string   `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"CHRONICLE_LISTEN"`
	CORSOrigins []string `help:"allowed CORS origins" default:"*" env:"CHRONICLE_CORS_ORIGINS"`

	// Token configuration
	TokenSecret string        `help:"secret key for HMAC signing of bearer tokens (min 32 bytes)" env:"CHRONICLE_TOKEN_SECRET" required:""`
	TokenTTL    time.Duration `help:"bearer token lifetime" default:"720h" env:"CHRONICLE_TOKEN_TTL"`

	// External services
	ServicesConfig string `help:"path to the external-services YAML config" env:"CHRONICLE_SERVICES_CONFIG" required:""`
	MediaDir       string `help:"directory for generated media assets" default:"media" env:"CHRONICLE_MEDIA_DIR"`
	ImageCacheDir  string `help:"directory for the image download cache (empty for in-memory)" default:"" env:"CHRONICLE_IMAGE_CACHE_DIR"`

	Tracing bool `help:"enable telemetry export" default:"false" env:"CHRONICLE_TRACING"`

	Store StoreFlags `embed:""`
}

func (c *APICmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting API server")

	if c.Tracing {
		shutdown, err := telemetry.InitTelemetry(ctx, "chronicle-api", globals.Version)
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
	log.Info().Str("store", c.Store.StoreType).Msg("Stores ready")

	issuer, err := auth.NewIssuer([]byte(c.TokenSecret), c.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	services, err := config.LoadServices(c.ServicesConfig)
	if err != nil {
		return err
	}

	textClient, err := genai.NewClient(genai.ClientConfig{
		BaseURL:     services.Generation.BaseURL,
		APIKey:      services.Generation.APIKey,
		Model:       services.Generation.Model,
		MaxAttempts: services.Generation.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	// Image generation is optional; the endpoint reports 502 when the
	// service is not configured.
	var images httpapi.ImageGenerator
	if services.Image.BaseURL != "" {
		imageClient, err := genai.NewImageClient(genai.ImageClientConfig{
			BaseURL:        services.Image.BaseURL,
			APIKey:         services.Image.APIKey,
			Model:          services.Image.Model,
			DownloadClient: client.NewCachingHTTPClient(c.ImageCacheDir, 60*time.Second),
		})
		if err != nil {
			return fmt.Errorf("failed to create image client: %w", err)
		}
		images = imageClient
	}

	mediaStore, err := media.NewStore(c.MediaDir)
	if err != nil {
		return err
	}

	server := httpapi.NewServer(httpapi.Config{
		Users:          stores.Users,
		Workspaces:     stores.Workspaces,
		Posts:          stores.Posts,
		Reminders:      stores.Reminders,
		Sessions:       stores.Sessions,
		Issuer:         issuer,
		Orchestrator:   genai.NewOrchestrator(textClient),
		Images:         images,
		Media:          mediaStore,
		AllowedOrigins: c.CORSOrigins,
	})

	handler := logger.RequestLogger(log)(server.Handler())
	httpServer := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Msg("Listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}
	}

	return nil
}
