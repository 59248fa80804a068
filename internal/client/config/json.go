package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/saveeat/saveeat-client/internal/flagx"
	"github.com/saveeat/saveeat-client/internal/timex"
	"github.com/shopspring/decimal"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// timex.Duration so they can be written as "30s" or as nanoseconds.
type JsonConfig struct {
	ServerBaseURL   string          `json:"server_base_url"`
	DatabaseDSN     string          `json:"database_dsn"`
	RequestTimeout  timex.Duration  `json:"request_timeout"`
	RefreshInterval timex.Duration  `json:"refresh_interval"`
	LogLevel        string          `json:"log_level"`
	LogFormat       string          `json:"log_format"`
	StorageSecret   string          `json:"storage_secret"`
	CO2PerListingKg decimal.Decimal `json:"co2_per_listing_kg"`
}

// parseJson overlays cfg with the JSON file named by -c/-config (or
// SAVEEAT_CONFIG). Keys absent from the file keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	jc := JsonConfig{
		ServerBaseURL:   cfg.ServerBaseURL,
		DatabaseDSN:     cfg.DatabaseDSN,
		RequestTimeout:  timex.Duration{Duration: cfg.RequestTimeout},
		RefreshInterval: timex.Duration{Duration: cfg.RefreshInterval},
		LogLevel:        cfg.LogLevel,
		LogFormat:       cfg.LogFormat,
		StorageSecret:   cfg.StorageSecret,
		CO2PerListingKg: cfg.CO2PerListingKg,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	cfg.ServerBaseURL = jc.ServerBaseURL
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.RefreshInterval = jc.RefreshInterval.Duration
	cfg.LogLevel = jc.LogLevel
	cfg.LogFormat = jc.LogFormat
	cfg.StorageSecret = jc.StorageSecret
	cfg.CO2PerListingKg = jc.CO2PerListingKg
	return nil
}
