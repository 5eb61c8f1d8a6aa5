package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/supportportal/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding the config file. It
// relies on timex.Duration so durations can be strings like "10s" or
// integer nanoseconds. Nil and empty fields leave the current value alone.
type FileConfig struct {
	ServerURL       string          `json:"server_url" yaml:"server_url"`
	DatabasePath    string          `json:"database_path" yaml:"database_path"`
	HTTPTimeout     *timex.Duration `json:"http_timeout" yaml:"http_timeout"`
	RetryMaxElapsed *timex.Duration `json:"retry_max_elapsed" yaml:"retry_max_elapsed"`
	LogLevel        string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the fields present in the file at path.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// An empty path loads nothing.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.HTTPTimeout != nil {
		cfg.HTTPTimeout = fc.HTTPTimeout.Duration
	}
	if fc.RetryMaxElapsed != nil {
		cfg.RetryMaxElapsed = fc.RetryMaxElapsed.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}
