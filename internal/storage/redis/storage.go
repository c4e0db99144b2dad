package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage"
	"github.com/mcoot/navalcombat/internal/storage/codec"
)

// Storage is a Redis-backed snapshot store
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a new Redis storage instance
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	return connect(redis.NewClient(opts), cfg, logger)
}

// connect verifies the client can reach Redis, closing it if not
func connect(client *redis.Client, cfg Config, logger *slog.Logger) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	if cfg.Slot == "" {
		cfg.Slot = DefaultConfig().Slot
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redis-store"), slog.String("slot", cfg.Slot)),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.SnapshotStore = (*Storage)(nil)

func (s *Storage) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSaveFailed, err)
	}

	primary, backup := primaryKey(s.cfg.Slot), backupKey(s.cfg.Slot)

	previous, err := s.client.Get(ctx, primary).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("could not read primary for backup", slog.String("error", err.Error()))
	}

	// Backup and primary are written in one transaction
	pipe := s.client.TxPipeline()
	if len(previous) > 0 {
		pipe.Set(ctx, backup, previous, s.cfg.SaveTTL)
	}
	pipe.Set(ctx, primary, data, s.cfg.SaveTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrSaveFailed, err)
	}

	size, err := s.client.StrLen(ctx, primary).Result()
	if err != nil {
		return fmt.Errorf("%w: verify save: %v", model.ErrSaveFailed, err)
	}
	if size == 0 {
		return fmt.Errorf("%w: saved value is empty", model.ErrSaveFailed)
	}

	s.logger.Info("game saved", slog.Int64("bytes", size))
	return nil
}

func (s *Storage) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.client.Get(ctx, primaryKey(s.cfg.Slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrNoSavedGame
	}

	var primaryErr error
	if err != nil {
		primaryErr = err
	} else {
		snap, decodeErr := codec.Decode(data)
		if decodeErr == nil {
			return snap, nil
		}
		primaryErr = decodeErr
	}
	s.logger.Warn("primary save unreadable, trying backup", slog.String("error", primaryErr.Error()))

	snap, backupErr := s.loadKey(ctx, backupKey(s.cfg.Slot))
	if backupErr == nil {
		s.logger.Info("restored from backup save")
		return snap, nil
	}

	return nil, fmt.Errorf("%w: %w", model.ErrLoadFailed, errors.Join(primaryErr, backupErr))
}

func (s *Storage) loadKey(ctx context.Context, key string) (*model.Snapshot, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("no value at %s", key)
		}
		return nil, err
	}
	return codec.Decode(data)
}

func (s *Storage) HasSavedGame(ctx context.Context) bool {
	size, err := s.client.StrLen(ctx, primaryKey(s.cfg.Slot)).Result()
	return err == nil && size > 0
}

func (s *Storage) Delete(ctx context.Context) error {
	return s.client.Del(ctx, primaryKey(s.cfg.Slot), backupKey(s.cfg.Slot)).Err()
}
