package config

// validate checks that the final merged [ClientConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Gateway.BaseURL == "" || cfg.Gateway.RequestTimeout <= 0 {
		return ErrInvalidGatewayConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.DownloadLimit <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Autopunch.CutoffHour < 0 || cfg.Autopunch.CutoffHour > 23 ||
		cfg.Autopunch.CutoffMinute < 0 || cfg.Autopunch.CutoffMinute > 59 {
		return ErrInvalidAutopunchConfigs
	}

	if cfg.Geofence.Enabled && (cfg.Geofence.RadiusMeters <= 0 || len(cfg.Geofence.Zones) == 0) {
		return ErrInvalidGeofenceConfigs
	}

	return nil
}
