package redis

import "time"

// Config holds Redis connection and save slot settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Slot names the save; one slot holds one primary and one backup
	Slot string

	// SaveTTL expires saves after the given duration. Zero keeps them forever.
	SaveTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		Slot:         "last_game",
		SaveTTL:      0,
	}
}
