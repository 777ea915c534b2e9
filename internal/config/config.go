// Package config provides configuration for the picamstream server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values used when no environment override is present.
const (
	DefaultHost   = "0.0.0.0"
	DefaultPort   = 5000
	DefaultDevice = 0
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultFPS    = 30

	// DefaultPollInterval and DefaultMaxPolls bound the per-viewer startup
	// window: 20 polls at 500ms gives viewers 10 seconds before the static
	// fallback image is served.
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxPolls     = 20

	// DefaultStopTimeout bounds the wait for the capture loop on shutdown.
	DefaultStopTimeout = time.Second
)

// DefaultFallbackCommand is the external streaming program started when the
// camera device is not present on this machine.
var DefaultFallbackCommand = []string{"rtsp-stream"}

// Config holds the full server configuration.
type Config struct {
	Host   string
	Port   int
	Device int

	Width  int
	Height int
	FPS    int

	PollInterval time.Duration
	MaxPolls     int
	StopTimeout  time.Duration

	// FallbackCommand is executed (argv form) instead of starting the server
	// when the camera device is unavailable. Empty disables the fallback.
	FallbackCommand []string

	// DBPath is the SQLite event log location. Empty disables the event log.
	DBPath string
}

// Load builds a Config from defaults and environment variable overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Host:            getEnvOrDefault("PICAMSTREAM_HOST", DefaultHost),
		Port:            getEnvAsIntOrDefault("PICAMSTREAM_PORT", DefaultPort),
		Device:          getEnvAsIntOrDefault("PICAMSTREAM_DEVICE", DefaultDevice),
		Width:           getEnvAsIntOrDefault("PICAMSTREAM_WIDTH", DefaultWidth),
		Height:          getEnvAsIntOrDefault("PICAMSTREAM_HEIGHT", DefaultHeight),
		FPS:             getEnvAsIntOrDefault("PICAMSTREAM_FPS", DefaultFPS),
		PollInterval:    DefaultPollInterval,
		MaxPolls:        DefaultMaxPolls,
		StopTimeout:     DefaultStopTimeout,
		FallbackCommand: getEnvAsArgsOrDefault("PICAMSTREAM_FALLBACK", DefaultFallbackCommand),
		DBPath:          os.Getenv("PICAMSTREAM_DB"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution: %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 || c.FPS > 120 {
		return fmt.Errorf("invalid fps: %d", c.FPS)
	}
	if c.MaxPolls < 0 {
		return fmt.Errorf("invalid max polls: %d", c.MaxPolls)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FrameInterval returns the inter-frame delay derived from FPS (~33ms at 30fps).
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// getEnvOrDefault returns the environment variable value, or the default when unset.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault parses the environment variable as an integer,
// falling back to the default when unset or unparseable.
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvAsArgsOrDefault splits the environment variable on whitespace into an
// argv slice, falling back to the default when unset.
func getEnvAsArgsOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Fields(value)
	}
	return defaultValue
}
