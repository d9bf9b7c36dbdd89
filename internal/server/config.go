// Package server provides configuration helpers that define runtime defaults,
// validation, and environment overrides for the HTMX playground service.
package server

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort              = ":3000"
	defaultMaxMessageSize    = 4096
	defaultHeartbeatInterval = 30 * time.Second
	defaultSlowDataDelay     = 1000 * time.Millisecond
)

// Config holds the server configuration settings.
type Config struct {
	Port              string
	AllowedOrigins    []string
	MaxMessageSize    int64
	HeartbeatInterval time.Duration
	SlowDataDelay     time.Duration
	StaticDir         string
}

func defaultConfig() Config {
	return Config{
		Port:              defaultPort,
		AllowedOrigins:    []string{"*"},
		MaxMessageSize:    defaultMaxMessageSize,
		HeartbeatInterval: defaultHeartbeatInterval,
		SlowDataDelay:     defaultSlowDataDelay,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}

	if cfg.SlowDataDelay < 0 {
		cfg.SlowDataDelay = defaultSlowDataDelay
	}

	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	cfg.StaticDir = strings.TrimSpace(cfg.StaticDir)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are not set or invalid.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = normalizePort(port)
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if maxSize := os.Getenv("MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseMaxMessageSize(maxSize, cfg.MaxMessageSize)
	}

	if interval := os.Getenv("HEARTBEAT_INTERVAL"); interval != "" {
		cfg.HeartbeatInterval = parseSeconds(interval, cfg.HeartbeatInterval)
	}

	if delay := os.Getenv("SLOW_DATA_DELAY_MS"); delay != "" {
		cfg.SlowDataDelay = parseMilliseconds(delay, cfg.SlowDataDelay)
	}

	cfg.StaticDir = os.Getenv("STATIC_DIR")

	return &cfg
}

// normalizePort accepts either "3000" or ":3000" style values.
func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseMaxMessageSize(value string, defaultValue int64) int64 {
	if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
		return size
	}
	return defaultValue
}

func parseSeconds(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func parseMilliseconds(value string, defaultValue time.Duration) time.Duration {
	if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
