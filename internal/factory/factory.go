package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mizucoffee/canislupus-server/internal/dependencies/clock"
	"github.com/mizucoffee/canislupus-server/internal/dependencies/random"
	"github.com/mizucoffee/canislupus-server/internal/registry"
	"github.com/mizucoffee/canislupus-server/internal/services/auth"
	"github.com/mizucoffee/canislupus-server/internal/services/sync"
	"github.com/mizucoffee/canislupus-server/internal/storage"
	"github.com/mizucoffee/canislupus-server/internal/storage/memory"
	redisstorage "github.com/mizucoffee/canislupus-server/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Room membership
	Registry *registry.Registry

	// Services
	AuthService *auth.Service
	SyncEngine  *sync.Engine
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RegistryConfig controls room membership policy
	// If zero value, defaults to registry.DefaultConfig()
	RegistryConfig *registry.Config
	// SyncConfig controls the engine's join policy
	// If zero value, defaults to sync.DefaultConfig()
	SyncConfig *sync.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	registryCfg := registry.DefaultConfig()
	if cfg.RegistryConfig != nil {
		registryCfg = *cfg.RegistryConfig
	}
	syncCfg := sync.DefaultConfig()
	if cfg.SyncConfig != nil {
		syncCfg = *cfg.SyncConfig
	}

	return newWithDependencies(store, clk, rnd, registryCfg, syncCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, registryCfg registry.Config, syncCfg sync.Config, logger *slog.Logger) *App {
	reg := registry.New(registryCfg, logger)
	authService := auth.New(store, clk, rnd, logger)
	syncEngine := sync.New(store, reg, clk, syncCfg, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Registry:    reg,
		AuthService: authService,
		SyncEngine:  syncEngine,
	}
}
