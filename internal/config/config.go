package config

import (
	"time"

	"github.com/iplaycheck/go-punch-clock/models"
)

// ClientConfig is the top-level configuration container for the punch-clock
// client. It is populated by merging values from environment variables,
// command-line flags, an optional JSON file, and built-in defaults, in that
// priority order (earlier sources win for non-zero fields).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type ClientConfig struct {
	// Storage holds local persistence settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Gateway holds remote document store and media host settings.
	Gateway Gateway `envPrefix:"GATEWAY_"`

	// Sync holds background synchronisation settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Autopunch holds the forgotten-checkout scheduler settings.
	Autopunch Autopunch `envPrefix:"AUTOPUNCH_"`

	// Geofence holds location validation settings. Zones are configurable
	// through the JSON file only.
	Geofence Geofence `envPrefix:"GEOFENCE_"`

	// User identifies the device owner when it cannot be derived from the
	// gateway token.
	User User `envPrefix:"USER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups local persistence settings.
type Storage struct {
	// DB holds the local database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the on-device SQLite database.
type DB struct {
	// Path is the SQLite database file path.
	// Env: STORAGE_DB_PATH
	Path string `env:"PATH"`
}

// Gateway holds settings for the remote record store and the media host.
type Gateway struct {
	// BaseURL is the document-collection API base URL.
	// Env: GATEWAY_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// MediaBaseURL is the image host API base URL.
	// Env: GATEWAY_MEDIA_BASE_URL
	MediaBaseURL string `env:"MEDIA_BASE_URL"`

	// Token is the bearer token attached to authenticated requests.
	// Env: GATEWAY_TOKEN
	Token string `env:"TOKEN"`

	// MediaAPIKey is the API key for the media host.
	// Env: GATEWAY_MEDIA_API_KEY
	MediaAPIKey string `env:"MEDIA_API_KEY"`

	// RequestTimeout is the per-request timeout for outbound calls.
	// Env: GATEWAY_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds background synchronisation settings.
type Sync struct {
	// Interval is how often the automatic sync pass runs.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// DownloadLimit caps the number of remote records pulled per pass.
	// Env: SYNC_DOWNLOAD_LIMIT
	DownloadLimit int `env:"DOWNLOAD_LIMIT"`

	// ProbeInterval is how often connectivity is re-checked for
	// offline-to-online edge detection.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Autopunch holds settings for the automatic end-of-day checkout.
type Autopunch struct {
	// Enabled toggles the scheduler.
	// Env: AUTOPUNCH_ENABLED
	Enabled bool `env:"ENABLED"`

	// CutoffHour and CutoffMinute define the local wall-clock time at which
	// a forgotten "out" punch is synthesised.
	// Env: AUTOPUNCH_CUTOFF_HOUR, AUTOPUNCH_CUTOFF_MINUTE
	CutoffHour   int `env:"CUTOFF_HOUR"`
	CutoffMinute int `env:"CUTOFF_MINUTE"`
}

// Geofence holds location validation settings.
type Geofence struct {
	// Enabled toggles the allowed-zone check at punch time. When disabled,
	// punches from any location are accepted.
	// Env: GEOFENCE_ENABLED
	Enabled bool `env:"ENABLED"`

	// RadiusMeters is the maximum allowed distance to the nearest zone.
	// Env: GEOFENCE_RADIUS_METERS
	RadiusMeters float64 `env:"RADIUS_METERS"`

	// Zones lists the allowed punch locations. JSON file only.
	Zones []models.Zone `env:"-"`
}

// User identifies the device owner.
type User struct {
	// ID is the user identifier. When empty, the client derives it from the
	// gateway token's subject claim.
	// Env: USER_ID
	ID string `env:"ID"`
}

// GetClientConfig loads, merges, and validates the client configuration from
// all available sources in the following priority order (earlier sources win
// for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *ClientConfig or an error if any source fails to
// load or the final config fails validation.
func GetClientConfig() (*ClientConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
