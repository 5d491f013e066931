// Package config loads the configuration shared by the helix-top and
// helix-proxy binaries: a YAML file merged with HELIX_* environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the configuration from configPath. When configPath is empty
// the standard locations are searched (./config.yaml, ~/.helix/config.yaml,
// /etc/helix/config.yaml) and a missing file is not an error; everything
// then comes from defaults and environment variables. An explicitly named
// file must exist.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// HELIX_LOGGING_LEVEL overrides logging.level, and so on. The client
	// ID additionally honors the conventional TWITCH_CLIENT_ID.
	v.SetEnvPrefix("HELIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("helix.client_id", "TWITCH_CLIENT_ID", "HELIX_CLIENT_ID"); err != nil {
		return nil, fmt.Errorf("bind client id env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".helix"))
		}
		v.AddConfigPath("/etc/helix/")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")
}

// validate checks cross-field constraints and enum fields. The client ID
// is deliberately not required here; the binaries merge it from flags
// before constructing a client.
func validate(cfg *Config) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
		"auto":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s", cfg.Logging.Format)
	}

	if cfg.Cache.Enabled && !cfg.Redis.Enabled {
		return fmt.Errorf("cache.enabled requires redis.enabled")
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive (got %s)", cfg.Cache.TTL)
	}
	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis.enabled")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	return nil
}
