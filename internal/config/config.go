package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries the full server configuration.
type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string
	RedisURL  string

	// Mutator periods. Deliberately independent so unrelated metrics do
	// not update in lockstep.
	ActiveUsersInterval time.Duration
	MetricsInterval     time.Duration
	ActivityInterval    time.Duration

	// Snapshot bounds.
	HistoryWindow int
	ActivityCap   int

	// Push channel.
	MaxClients int

	// Broker topics.
	AlertsTopic    string
	AdminLogsTopic string

	// Outbound event simulator.
	SimulatorEnabled bool
	AlertInterval    time.Duration
	AdminLogInterval time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		RedisURL:       getEnv("REDIS_URL", ""),
		AlertsTopic:    getEnv("ALERTS_TOPIC", "events:alerts:critical"),
		AdminLogsTopic: getEnv("ADMIN_LOGS_TOPIC", "events:logs:admin"),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	var err error
	if cfg.ActiveUsersInterval, err = getDuration("ACTIVE_USERS_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.MetricsInterval, err = getDuration("METRICS_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ActivityInterval, err = getDuration("ACTIVITY_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AlertInterval, err = getDuration("SIMULATOR_ALERT_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.AdminLogInterval, err = getDuration("SIMULATOR_ADMIN_LOG_INTERVAL", 20*time.Second); err != nil {
		return nil, err
	}

	if cfg.HistoryWindow, err = getInt("HISTORY_WINDOW", 20); err != nil {
		return nil, err
	}
	if cfg.ActivityCap, err = getInt("ACTIVITY_CAP", 10); err != nil {
		return nil, err
	}
	if cfg.MaxClients, err = getInt("MAX_CLIENTS", 256); err != nil {
		return nil, err
	}

	if cfg.SimulatorEnabled, err = getBool("SIMULATOR_ENABLED", true); err != nil {
		return nil, err
	}

	if cfg.HistoryWindow < 2 {
		return nil, fmt.Errorf("HISTORY_WINDOW must be at least 2, got %d", cfg.HistoryWindow)
	}
	if cfg.ActivityCap < 1 {
		return nil, fmt.Errorf("ACTIVITY_CAP must be at least 1, got %d", cfg.ActivityCap)
	}
	for name, d := range map[string]time.Duration{
		"ACTIVE_USERS_INTERVAL":        cfg.ActiveUsersInterval,
		"METRICS_INTERVAL":             cfg.MetricsInterval,
		"ACTIVITY_INTERVAL":            cfg.ActivityInterval,
		"SIMULATOR_ALERT_INTERVAL":     cfg.AlertInterval,
		"SIMULATOR_ADMIN_LOG_INTERVAL": cfg.AdminLogInterval,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 2s or 500ms: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
