package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ActiveUsersInterval)
	assert.Equal(t, 5*time.Second, cfg.MetricsInterval)
	assert.Equal(t, 10*time.Second, cfg.ActivityInterval)
	assert.Equal(t, 20, cfg.HistoryWindow)
	assert.Equal(t, 10, cfg.ActivityCap)
	assert.Equal(t, "events:alerts:critical", cfg.AlertsTopic)
	assert.Equal(t, "events:logs:admin", cfg.AdminLogsTopic)
	assert.True(t, cfg.SimulatorEnabled)
}

func TestLoad_RequiresRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ACTIVE_USERS_INTERVAL", "500ms")
	t.Setenv("HISTORY_WINDOW", "40")
	t.Setenv("SIMULATOR_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.ActiveUsersInterval)
	assert.Equal(t, 40, cfg.HistoryWindow)
	assert.False(t, cfg.SimulatorEnabled)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("METRICS_INTERVAL", "five seconds")
		_, err := Load()
		assert.ErrorContains(t, err, "METRICS_INTERVAL")
	})

	t.Run("negative interval", func(t *testing.T) {
		t.Setenv("ACTIVITY_INTERVAL", "-1s")
		_, err := Load()
		assert.ErrorContains(t, err, "ACTIVITY_INTERVAL")
	})

	t.Run("window too small", func(t *testing.T) {
		t.Setenv("HISTORY_WINDOW", "1")
		_, err := Load()
		assert.ErrorContains(t, err, "HISTORY_WINDOW")
	})
}
