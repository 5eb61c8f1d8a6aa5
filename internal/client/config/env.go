package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix namespaces the environment overrides, e.g. SUPPORTPORTAL_SERVER_URL.
const EnvPrefix = "SUPPORTPORTAL"

// parseEnv overlays cfg with variables that are set. Unset variables leave
// the current value alone.
func parseEnv(cfg *Config) error {
	return envconfig.Process(EnvPrefix, cfg)
}
