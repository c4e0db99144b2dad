package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/mcoot/navalcombat/internal/storage/file"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	SaveDir      string
	Output       string
	Verbose      bool
	CPUShotDelay time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("NAVAL_SERVER", "http://localhost:8080"),
		SaveDir:      getEnvOrDefault("NAVAL_SAVE_DIR", file.DefaultDir),
		Output:       "text",
		Verbose:      false,
		CPUShotDelay: 600 * time.Millisecond,
	}
}

// Logger returns the logger for local commands. Logs go to stderr so they
// don't interleave with the boards; only warnings show unless verbose.
func (c *Config) Logger() *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
