package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/saveeat/saveeat-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the SaveEat API
//	-d string   local database DSN
//	-t int      request timeout (seconds)
//	-r int      background refresh interval (seconds, 0 disables)
//	-l string   log level
//
// Arguments are filtered with flagx.FilterArgs so that flags owned by other
// components (-c) do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("saveeat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the SaveEat API")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database DSN")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	refresh := fs.Int("r", int(cfg.RefreshInterval.Seconds()), "refresh interval (in seconds, 0 disables)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.RefreshInterval = time.Duration(*refresh) * time.Second
	return nil
}
