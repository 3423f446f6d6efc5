package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
	"github.com/mcoot/pokerleague/internal/dependencies/idgen"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/services/league"
	"github.com/mcoot/pokerleague/internal/storage"
	"github.com/mcoot/pokerleague/internal/storage/memory"
	"github.com/mcoot/pokerleague/internal/storage/notify"
	pgstorage "github.com/mcoot/pokerleague/internal/storage/postgres"
	redisstorage "github.com/mcoot/pokerleague/internal/storage/redis"
	"github.com/mcoot/pokerleague/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage is the backend wrapped so that writes invalidate live views
	Storage storage.Storage
	// Backend is the unwrapped backend; writes to it are not broadcast
	Backend storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	LeagueController *league.Controller
	AuthService      *auth.Service
	HubManager       *sse.HubManager
	Broadcaster      *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the admin token check (optional)
	// If zero value, admin routes are open
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), idgen.New(), cfg.AuthConfig, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(*cfg.PostgresConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(backend storage.Storage, clk clock.Clock, ids idgen.Generator, authCfg auth.Config, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(authCfg, clk)
	if err != nil {
		return nil, err
	}

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, backend, logger)
	store := notify.Wrap(backend, broadcaster, clk, logger)
	leagueController := league.NewController(store, clk, ids, logger)

	return &App{
		Storage:          store,
		Backend:          backend,
		Clock:            clk,
		IDs:              ids,
		LeagueController: leagueController,
		AuthService:      authService,
		HubManager:       hubManager,
		Broadcaster:      broadcaster,
	}, nil
}

// Close releases the hubs and the storage backend
func (a *App) Close() error {
	a.HubManager.Close()
	return a.Storage.Close()
}
