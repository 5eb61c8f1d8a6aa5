package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.5:8081", "-d", "/tmp/p.db", "-t", "10", "-l", "warn"},
			expected: &Config{
				ServerURL:       "http://10.0.0.5:8081",
				DatabasePath:    "/tmp/p.db",
				HTTPTimeout:     10 * time.Second,
				RetryMaxElapsed: 10 * time.Second,
				LogLevel:        "warn",
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-c", "cfg.json", "-x", "-a=http://h:1"},
			expected: &Config{
				ServerURL:       "http://h:1",
				DatabasePath:    "supportportal.db",
				HTTPTimeout:     30 * time.Second,
				RetryMaxElapsed: 10 * time.Second,
				LogLevel:        "info",
			},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			config.LoadDefaults()

			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
