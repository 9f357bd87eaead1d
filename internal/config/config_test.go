package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "testbox"

[network]
bind_address = "127.0.0.1:9999"
tick_rate = "25ms"

[logging]
level = "debug"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testbox", cfg.Server.Name)
	assert.Equal(t, "127.0.0.1:9999", cfg.Network.BindAddress)
	assert.Equal(t, 25*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NotZero(t, cfg.Server.StartTime)

	// Untouched sections keep defaults.
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 600, cfg.Game.SaveIntervalTicks)
	assert.True(t, cfg.Game.AutoCreateAccounts)
	assert.Equal(t, 16, cfg.Network.MaxPacketsPerTick)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
