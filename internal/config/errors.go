package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidGatewayConfigs indicates invalid remote gateway settings
	// (for example, missing base URL or non-positive request timeout).
	ErrInvalidGatewayConfigs = errors.New("invalid gateway configuration")
	// ErrInvalidSyncConfigs indicates invalid background sync settings
	// (for example, a non-positive interval or download limit).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidAutopunchConfigs indicates an out-of-range cutoff time.
	ErrInvalidAutopunchConfigs = errors.New("invalid autopunch configuration")
	// ErrInvalidGeofenceConfigs indicates the geofence is enabled without a
	// usable radius or zone list.
	ErrInvalidGeofenceConfigs = errors.New("invalid geofence configuration")
)
