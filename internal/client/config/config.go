package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/flagx"
)

// Config holds runtime settings for the support portal CLI.
//
// Fields:
//   - ServerURL: base URL of the user-directory backend.
//   - DatabasePath: SQLite file holding the session and the cached directory.
//   - HTTPTimeout: bound on a single remote call.
//   - RetryMaxElapsed: cap on total retry time for idempotent reads; 0 disables.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL       string        `envconfig:"SERVER_URL"`
	DatabasePath    string        `envconfig:"DB_PATH"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT"`
	RetryMaxElapsed time.Duration `envconfig:"RETRY_MAX_ELAPSED"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8081"
	c.DatabasePath = "supportportal.db"
	c.HTTPTimeout = 30 * time.Second
	c.RetryMaxElapsed = 10 * time.Second
	c.LogLevel = "info"
}

// Load builds a Config from args (without the program name). Sources are
// applied in order defaults, JSON file, environment, flags; later ones
// win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, flagx.ConfigPath(args)); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
