// Package config loads runtime configuration for the SaveEat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config, or SAVEEAT_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the SaveEat API
//	-d string   local database DSN
//	-t int      request timeout (seconds)
//	-r int      background refresh interval (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_base_url": "https://api.saveeat.fr/api",
//	  "database_dsn": "/var/lib/saveeat/client.db",
//	  "request_timeout": "30s",
//	  "refresh_interval": "1m",
//	  "log_level": "debug",
//	  "log_format": "json",
//	  "storage_secret": "change-me",
//	  "co2_per_listing_kg": "2.5"
//	}
package config
