package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d local database file path
//	-gateway-url document store API base URL
//	-media-url media host API base URL
//	-token gateway bearer token
//	-media-api-key media host API key
//	-request-timeout outbound request timeout (e.g., "15s")
//	-sync-interval automatic sync interval (e.g., "60s")
//	-download-limit remote download page size
//	-user user identifier
//	-c/-config json file path with configs
func ParseFlags() *ClientConfig {
	var databasePath string
	var gatewayURL string
	var mediaURL string
	var token string
	var mediaAPIKey string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var downloadLimit int
	var userID string
	var jsonConfigPath string

	flag.StringVar(&databasePath, "d", "", "Local database file path")
	flag.StringVar(&gatewayURL, "gateway-url", "", "Document store API base URL")
	flag.StringVar(&mediaURL, "media-url", "", "Media host API base URL")
	flag.StringVar(&token, "token", "", "Gateway bearer token")
	flag.StringVar(&mediaAPIKey, "media-api-key", "", "Media host API key")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 15s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Automatic sync interval (e.g., 60s)")
	flag.IntVar(&downloadLimit, "download-limit", 0, "Remote download page size")
	flag.StringVar(&userID, "user", "", "User identifier")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &ClientConfig{
		Storage: Storage{
			DB: DB{
				Path: databasePath,
			},
		},
		Gateway: Gateway{
			BaseURL:        gatewayURL,
			MediaBaseURL:   mediaURL,
			Token:          token,
			MediaAPIKey:    mediaAPIKey,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			Interval:      syncInterval,
			DownloadLimit: downloadLimit,
		},
		User:         User{ID: userID},
		JSONFilePath: jsonConfigPath,
	}
}
