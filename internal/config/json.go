package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/iplaycheck/go-punch-clock/models"
)

// ClientJSONConfig mirrors [ClientConfig] with JSON tags and string-friendly
// durations. The zone list for the geofence is only configurable here.
type ClientJSONConfig struct {
	Storage struct {
		DB struct {
			Path string `json:"path"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Gateway struct {
		BaseURL        string   `json:"base_url"`
		MediaBaseURL   string   `json:"media_base_url"`
		Token          string   `json:"token"`
		MediaAPIKey    string   `json:"media_api_key"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"gateway,omitempty"`

	Sync struct {
		Interval      Duration `json:"interval"`
		DownloadLimit int      `json:"download_limit"`
		ProbeInterval Duration `json:"probe_interval"`
	} `json:"sync,omitempty"`

	Autopunch struct {
		Enabled      bool `json:"enabled"`
		CutoffHour   int  `json:"cutoff_hour"`
		CutoffMinute int  `json:"cutoff_minute"`
	} `json:"autopunch,omitempty"`

	Geofence struct {
		Enabled      bool          `json:"enabled"`
		RadiusMeters float64       `json:"radius_meters"`
		Zones        []models.Zone `json:"zones"`
	} `json:"geofence,omitempty"`

	User struct {
		ID string `json:"id"`
	} `json:"user,omitempty"`
}

func parseJSON(jsonFilePath string) (*ClientConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg ClientJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &ClientConfig{
		Storage: Storage{
			DB: DB{
				Path: jsonCfg.Storage.DB.Path,
			},
		},
		Gateway: Gateway{
			BaseURL:        jsonCfg.Gateway.BaseURL,
			MediaBaseURL:   jsonCfg.Gateway.MediaBaseURL,
			Token:          jsonCfg.Gateway.Token,
			MediaAPIKey:    jsonCfg.Gateway.MediaAPIKey,
			RequestTimeout: time.Duration(jsonCfg.Gateway.RequestTimeout),
		},
		Sync: Sync{
			Interval:      time.Duration(jsonCfg.Sync.Interval),
			DownloadLimit: jsonCfg.Sync.DownloadLimit,
			ProbeInterval: time.Duration(jsonCfg.Sync.ProbeInterval),
		},
		Autopunch: Autopunch{
			Enabled:      jsonCfg.Autopunch.Enabled,
			CutoffHour:   jsonCfg.Autopunch.CutoffHour,
			CutoffMinute: jsonCfg.Autopunch.CutoffMinute,
		},
		Geofence: Geofence{
			Enabled:      jsonCfg.Geofence.Enabled,
			RadiusMeters: jsonCfg.Geofence.RadiusMeters,
			Zones:        jsonCfg.Geofence.Zones,
		},
		User:         User{ID: jsonCfg.User.ID},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
