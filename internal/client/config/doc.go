// Package config loads runtime configuration for the support portal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or -config.
//  3. Environment variables prefixed with SUPPORTPORTAL_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the backend
//	-d string   local SQLite database path
//	-t int      HTTP timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # File schema
//
// Durations use timex.Duration, so values are strings like "10s" or integer
// nanoseconds. Files named *.yaml or *.yml use the same keys in YAML:
//
//	{
//	  "server_url": "http://localhost:8081",
//	  "database_path": "supportportal.db",
//	  "http_timeout": "30s",
//	  "retry_max_elapsed": "10s",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	SUPPORTPORTAL_SERVER_URL, SUPPORTPORTAL_DB_PATH, SUPPORTPORTAL_HTTP_TIMEOUT,
//	SUPPORTPORTAL_RETRY_MAX_ELAPSED, SUPPORTPORTAL_LOG_LEVEL
package config
