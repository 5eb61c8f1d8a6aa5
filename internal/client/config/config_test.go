package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable envconfig would read, prefixed or not,
// and restores them when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SERVER_URL", "DB_PATH", "HTTP_TIMEOUT", "RETRY_MAX_ELAPSED", "LOG_LEVEL"} {
		for _, name := range []string{EnvPrefix + "_" + k, k} {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8081", c.ServerURL)
	assert.Equal(t, "supportportal.db", c.DatabasePath)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.Equal(t, 10*time.Second, c.RetryMaxElapsed)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeTempJSON(t, "", "", map[string]any{
		"server_url":        "http://from-json:1",
		"database_path":     "json.db",
		"retry_max_elapsed": "3s",
		"log_level":         "debug",
	})
	t.Setenv("SUPPORTPORTAL_SERVER_URL", "http://from-env:2")
	t.Setenv("SUPPORTPORTAL_LOG_LEVEL", "error")

	cfg, err := Load([]string{"-c", path, "-a", "http://from-flag:3"})
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:3", cfg.ServerURL)
	assert.Equal(t, "json.db", cfg.DatabasePath)
	assert.Equal(t, 3*time.Second, cfg.RetryMaxElapsed)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoad_EnvDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPPORTPORTAL_HTTP_TIMEOUT", "45s")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"-t", "soon"})
	assert.Error(t, err)

	t.Setenv("SUPPORTPORTAL_HTTP_TIMEOUT", "later")
	_, err = Load(nil)
	assert.Error(t, err)
}
