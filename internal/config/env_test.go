package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"CONFIG": "/path/to/config.json",

		"STORAGE_DB_PATH": "/var/lib/punchclock.db",

		"GATEWAY_BASE_URL":        "http://localhost:8080",
		"GATEWAY_MEDIA_BASE_URL":  "https://media.example",
		"GATEWAY_TOKEN":           "bearer-token",
		"GATEWAY_MEDIA_API_KEY":   "media-key",
		"GATEWAY_REQUEST_TIMEOUT": "30s",

		"SYNC_INTERVAL":       "2m",
		"SYNC_DOWNLOAD_LIMIT": "25",
		"SYNC_PROBE_INTERVAL": "10s",

		"AUTOPUNCH_ENABLED":       "true",
		"AUTOPUNCH_CUTOFF_HOUR":   "21",
		"AUTOPUNCH_CUTOFF_MINUTE": "45",

		"GEOFENCE_ENABLED":       "true",
		"GEOFENCE_RADIUS_METERS": "150.5",

		"USER_ID": "worker-1",
	})

	cfg := &ClientConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "/var/lib/punchclock.db", cfg.Storage.DB.Path)

	assert.Equal(t, "http://localhost:8080", cfg.Gateway.BaseURL)
	assert.Equal(t, "https://media.example", cfg.Gateway.MediaBaseURL)
	assert.Equal(t, "bearer-token", cfg.Gateway.Token)
	assert.Equal(t, "media-key", cfg.Gateway.MediaAPIKey)
	assert.Equal(t, 30*time.Second, cfg.Gateway.RequestTimeout)

	assert.Equal(t, 2*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 25, cfg.Sync.DownloadLimit)
	assert.Equal(t, 10*time.Second, cfg.Sync.ProbeInterval)

	assert.True(t, cfg.Autopunch.Enabled)
	assert.Equal(t, 21, cfg.Autopunch.CutoffHour)
	assert.Equal(t, 45, cfg.Autopunch.CutoffMinute)

	assert.True(t, cfg.Geofence.Enabled)
	assert.Equal(t, 150.5, cfg.Geofence.RadiusMeters)
	assert.Empty(t, cfg.Geofence.Zones, "zones come from the json file only")

	assert.Equal(t, "worker-1", cfg.User.ID)
}

func TestParseEnv_PartialFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"GATEWAY_BASE_URL": "http://localhost:8080",
		"SYNC_INTERVAL":    "90s",
	})

	cfg := &ClientConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Gateway.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Sync.Interval)

	assert.Empty(t, cfg.Storage.DB.Path)
	assert.Empty(t, cfg.Gateway.Token)
	assert.Zero(t, cfg.Gateway.RequestTimeout)
	assert.Zero(t, cfg.Sync.DownloadLimit)
	assert.False(t, cfg.Autopunch.Enabled)
	assert.Empty(t, cfg.User.ID)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{
		"GATEWAY_REQUEST_TIMEOUT": "not-a-duration",
	})

	cfg := &ClientConfig{}
	err := parseEnv(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}
