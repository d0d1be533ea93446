package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidation(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsOutOfRangeTickInterval(t *testing.T) {
	cfg := Default()
	cfg.TickIntervalMs = 5
	require.Error(t, cfg.Validate())

	cfg.TickIntervalMs = 1000
	require.Error(t, cfg.Validate())
}

func TestLoadAppliesOverridesOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_spawn_target: 10\nlog_level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.AutoSpawnTarget)
	require.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their documented defaults (§6.5).
	require.Equal(t, 0.20, cfg.RerouteThreshold)
	require.Equal(t, int64(200), cfg.AccidentClearTicks)
}

func TestStoreGetReturnsInitialConfigBeforeWatch(t *testing.T) {
	store := NewStore(Default(), "", nil)
	require.Equal(t, 75, store.Get().AutoSpawnTarget)
}
