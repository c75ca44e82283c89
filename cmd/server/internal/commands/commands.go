package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chroniclehq/chronicle/internal/store"
	memorystore "github.com/chroniclehq/chronicle/internal/store/memory"
	postgresstore "github.com/chroniclehq/chronicle/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// Stores bundles one instance of every store interface, all backed by the
// same storage engine.
type Stores struct {
	Users      store.UserStore
	Workspaces store.WorkspaceStore
	Posts      store.PostStore
	Reminders  store.ReminderStore
	Sessions   store.SessionStore
}

// StoreFlags selects and configures the storage backend, shared by the api
// and scheduler commands.
type StoreFlags struct {
	StoreType string             `help:"store type (memory or postgres)" default:"memory" env:"CHRONICLE_STORE_TYPE" enum:"memory,postgres"`
	Postgres  PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"CHRONICLE_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// buildStores creates the store set for the selected backend.
func (f *StoreFlags) buildStores(ctx context.Context) (*Stores, error) {
	switch f.StoreType {
	case "postgres":
		if err := f.Postgres.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      f.Postgres.ConnString,
			MaxConns:        f.Postgres.MaxConns,
			MinConns:        f.Postgres.MinConns,
			MaxConnLifetime: f.Postgres.MaxConnLifetime,
			MaxConnIdleTime: f.Postgres.MaxConnIdleTime,
			AutoMigrate:     f.Postgres.AutoMigrate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		return &Stores{
			Users:      postgresstore.NewUserStore(pool),
			Workspaces: postgresstore.NewWorkspaceStore(pool),
			Posts:      postgresstore.NewPostStore(pool),
			Reminders:  postgresstore.NewReminderStore(pool),
			Sessions:   postgresstore.NewSessionStore(pool),
		}, nil

	default:
		users := memorystore.NewUserStore()
		return &Stores{
			Users:      users,
			Workspaces: memorystore.NewWorkspaceStore(users),
			Posts:      memorystore.NewPostStore(),
			Reminders:  memorystore.NewReminderStore(),
			Sessions:   memorystore.NewSessionStore(),
		}, nil
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
