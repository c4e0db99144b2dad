package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/navalcombat/internal/dependencies/clock"
	"github.com/mcoot/navalcombat/internal/dependencies/random"
	"github.com/mcoot/navalcombat/internal/events"
	"github.com/mcoot/navalcombat/internal/services/bot"
	"github.com/mcoot/navalcombat/internal/services/game"
	"github.com/mcoot/navalcombat/internal/services/placer"
	"github.com/mcoot/navalcombat/internal/services/rules"
	"github.com/mcoot/navalcombat/internal/storage"
	"github.com/mcoot/navalcombat/internal/storage/file"
	"github.com/mcoot/navalcombat/internal/storage/memory"
	redisstorage "github.com/mcoot/navalcombat/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// DefaultCPUShotDelay is the pause before each CPU shot
const DefaultCPUShotDelay = 600 * time.Millisecond

// App contains all wired application components
type App struct {
	// Storage
	Store storage.SnapshotStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Engine     *rules.Engine
	Controller *game.Controller
	Hub        *events.Hub

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the save backend ("file", "memory" or "redis")
	// If empty, defaults to "file"
	StorageType string
	// SaveDir is the directory for the file backend (optional)
	SaveDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Nickname names the player in the first game (optional)
	Nickname string
	// CPUShotDelay is the pause before each CPU shot
	// If zero, DefaultCPUShotDelay is used; negative disables the pause
	CPUShotDelay time.Duration
	// AutoSave saves after every move and when the game ends
	AutoSave bool
	// Seed makes fleets and CPU targeting reproducible
	// If zero, crypto/rand is used
	Seed uint64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.SnapshotStore
	var closers []func() error
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	switch storageType {
	case StorageTypeFile:
		store = file.New(cfg.SaveDir, logger)
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'file', 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.Seed != 0 {
		rnd = random.NewSeeded(cfg.Seed)
	}

	app := newWithDependencies(store, clk, rnd, cfg, logger)
	app.closers = append(app.closers, closers...)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.SnapshotStore, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	delay := cfg.CPUShotDelay
	if delay == 0 {
		delay = DefaultCPUShotDelay
	}

	hub := events.NewHub(logger)
	go hub.Run()

	engine := rules.NewEngine(placer.New(rnd, logger), logger)
	controller := game.NewController(
		engine,
		bot.NewRandomStrategy(rnd),
		store,
		hub,
		clk,
		game.Config{CPUShotDelay: delay, AutoSave: cfg.AutoSave},
		logger,
	)
	if cfg.Nickname != "" {
		controller.NewGame(context.Background(), cfg.Nickname)
	}

	return &App{
		Store:      store,
		Clock:      clk,
		Random:     rnd,
		Engine:     engine,
		Controller: controller,
		Hub:        hub,
	}
}

// Close flushes pending saves and releases connections
func (a *App) Close() error {
	a.Controller.Close()
	a.Hub.Close()

	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
