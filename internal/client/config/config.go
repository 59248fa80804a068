package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the SaveEat CLI.
//
// Units: RequestTimeout and RefreshInterval are time.Duration; a zero
// RefreshInterval disables background refresh.
type Config struct {
	ServerBaseURL   string
	DatabaseDSN     string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	LogLevel        string
	LogFormat       string
	StorageSecret   string
	CO2PerListingKg decimal.Decimal
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000/api"
	c.DatabaseDSN = "saveeat.db"
	c.RequestTimeout = 30 * time.Second
	c.RefreshInterval = 0
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.StorageSecret = ""
	c.CO2PerListingKg = decimal.RequireFromString("2.5")
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server base URL %q", ErrInvalidConfig, c.ServerBaseURL)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: empty database DSN", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 || c.RefreshInterval < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.CO2PerListingKg.IsNegative() {
		return fmt.Errorf("%w: negative CO2 per listing", ErrInvalidConfig)
	}
	return nil
}
