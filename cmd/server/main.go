package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/navalcombat/internal/api"
	"github.com/mcoot/navalcombat/internal/factory"
	redisstorage "github.com/mcoot/navalcombat/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until a shutdown signal arrives or the server fails
func run(logger *slog.Logger) error {
	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not read .env", slog.String("error", err.Error()))
	}

	cfg, serverConfig, err := configFromEnv(logger)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Controller: app.Controller,
		Hub:        app.Hub,
	})
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// configFromEnv builds the factory and server configuration from the environment
func configFromEnv(logger *slog.Logger) (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		SaveDir:     os.Getenv("SAVE_DIR"),
		Nickname:    os.Getenv("NICKNAME"),
		AutoSave:    true,
	}
	serverConfig := api.DefaultServerConfig()

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, serverConfig, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if slot := os.Getenv("REDIS_SAVE_SLOT"); slot != "" {
			redisCfg.Slot = slot
		}
		cfg.RedisConfig = &redisCfg
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, serverConfig, errors.New("PORT must be a number")
		}
		serverConfig.Port = port
	}

	if v := os.Getenv("CPU_SHOT_DELAY"); v != "" {
		delay, err := time.ParseDuration(v)
		if err != nil {
			return cfg, serverConfig, errors.New("CPU_SHOT_DELAY must be a duration such as 600ms")
		}
		if delay == 0 {
			delay = -1
		}
		cfg.CPUShotDelay = delay
	}

	if v := os.Getenv("RANDOM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, serverConfig, errors.New("RANDOM_SEED must be a positive integer")
		}
		cfg.Seed = seed
	}

	if v := os.Getenv("AUTO_SAVE"); v != "" {
		switch strings.ToLower(v) {
		case "0", "false", "no", "off":
			cfg.AutoSave = false
		}
	}

	return cfg, serverConfig, nil
}
