package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"default Settings.toml when neither", "", "", "Settings.toml"},
		{"whitespace flag falls through to env", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CACHEWARDEN_CONFIG", tt.envValue)
			got := ResolveConfigPath(tt.flag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "enp5s0", cfg.Capture.Iface)
	assert.Equal(t, int64(60), cfg.Refresh.PurgeWakeUpIntervalSeconds)
	assert.Equal(t, 100, cfg.Refresh.MaxRecordsToRefreshInCycle)
	assert.Equal(t, uint32(15), cfg.Refresh.MinTTLToKeepRecord)
	assert.Equal(t, uint32(86400), cfg.Refresh.MaxTTLToKeepRecord)
	assert.False(t, cfg.Refresh.WeRunningDocker)
	assert.Equal(t, int64(30), cfg.Refresh.MinTimeToExpireToPurgeSeconds)
	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, 3030, cfg.API.Port)
	assert.False(t, cfg.Persistence.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	content := `
[capture]
iface = "eth1"

[refresh]
purge_wake_up_interval = 10
max_records_to_refresh_in_cycle = 50
min_ttl_to_keep_record = 20
max_ttl_to_keep_record = 7200
we_running_docker = true
min_time_to_expire_to_purge = 15
docker_container_name = "unbound-prod"

[logging]
level = "debug"
structured = true
structured_format = "keyvalue"

[api]
host = "0.0.0.0"
port = 9090
`
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eth1", cfg.Capture.Iface)
	assert.Equal(t, int64(10), cfg.Refresh.PurgeWakeUpIntervalSeconds)
	assert.Equal(t, 50, cfg.Refresh.MaxRecordsToRefreshInCycle)
	assert.Equal(t, uint32(20), cfg.Refresh.MinTTLToKeepRecord)
	assert.Equal(t, uint32(7200), cfg.Refresh.MaxTTLToKeepRecord)
	assert.True(t, cfg.Refresh.WeRunningDocker)
	assert.Equal(t, int64(15), cfg.Refresh.MinTimeToExpireToPurgeSeconds)
	assert.Equal(t, "unbound-prod", cfg.Refresh.DockerContainerName)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Structured)
	assert.Equal(t, "keyvalue", cfg.Logging.StructuredFormat)
	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 9090, cfg.API.Port)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/to/Settings.toml")
	require.NoError(t, err)
	assert.Equal(t, "enp5s0", cfg.Capture.Iface)
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("refresh = [invalid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeRejectsInvertedTTLBounds(t *testing.T) {
	content := `
[refresh]
min_ttl_to_keep_record = 100
max_ttl_to_keep_record = 50
`
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeRejectsInvalidAPIPort(t *testing.T) {
	content := `
[api]
port = 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CACHEWARDEN_CAPTURE_IFACE", "wlan0")
	t.Setenv("CACHEWARDEN_REFRESH_PURGE_WAKE_UP_INTERVAL", "5")
	t.Setenv("CACHEWARDEN_REFRESH_WE_RUNNING_DOCKER", "true")
	t.Setenv("CACHEWARDEN_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "wlan0", cfg.Capture.Iface)
	assert.Equal(t, int64(5), cfg.Refresh.PurgeWakeUpIntervalSeconds)
	assert.True(t, cfg.Refresh.WeRunningDocker)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}
