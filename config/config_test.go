package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/config"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.toml")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 23, cfg.Tracking.CutoffHour)
	assert.Equal(t, 59, cfg.Tracking.CutoffMinute)

	_, err = os.Stat(path)
	assert.NoError(t, err, "first run writes an editable config file")
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.toml")

	cfg := config.DefaultConfig()
	cfg.Server.Port = 9090
	cfg.Tracking.Timezone = "Europe/Berlin"
	cfg.Tracking.SweepIntervalMinutes = 5
	require.NoError(t, config.Save(path, cfg))

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, loaded.Server.Port)
	assert.Equal(t, "Europe/Berlin", loaded.Tracking.Timezone)
	assert.Equal(t, 5*time.Minute, loaded.SweepInterval())
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.toml")

	cfg := config.DefaultConfig()
	cfg.Tracking.CutoffHour = 25
	require.NoError(t, config.Save(path, cfg))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestSweepInterval_Floor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tracking.SweepIntervalMinutes = 0

	assert.Equal(t, time.Minute, cfg.SweepInterval())
}
