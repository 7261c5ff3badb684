package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtmp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtmp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "riskpoint.db", cfg.Store.SQLitePath)
	assert.Equal(t, 14, cfg.GSI.Zoom)
	assert.InDelta(t, 5, cfg.GSI.RatePerSecond, 0.001)
	assert.Equal(t, 10, cfg.GSI.Burst)
	assert.Equal(t, 10, cfg.GSI.TimeoutSecs)
	assert.Equal(t, 256, cfg.GSI.CacheEntries)
	assert.Equal(t, 24, cfg.GSI.CacheTTLHours)
	assert.Equal(t, "riskpoint/1.0", cfg.GSI.UserAgent)
	assert.Equal(t, 3, cfg.Shelter.DefaultLimit)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtmp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/riskpoint
gsi:
  zoom: 15
  user_agent: bousai-map/2.0
server:
  port: 9090
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/riskpoint", cfg.Store.DatabaseURL)
	assert.Equal(t, 15, cfg.GSI.Zoom)
	assert.Equal(t, "bousai-map/2.0", cfg.GSI.UserAgent)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Shelter.DefaultLimit)
}

func TestLoadFromEnv(t *testing.T) {
	chtmp(t)
	t.Setenv("RISKPOINT_STORE_DRIVER", "postgres")
	t.Setenv("RISKPOINT_SERVER_PORT", "8181")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.Error(t, InitLogger(LogConfig{Level: "nonsense", Format: "json"}))
}
