package config

import "time"

// Config is the complete configuration consumed by the binaries. The
// library itself takes everything through client.New options; this package
// only exists so helix-top and helix-proxy read the same file layout.
type Config struct {
	Helix   HelixConfig   `mapstructure:"helix"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HelixConfig holds the Helix API connection details.
type HelixConfig struct {
	// ClientID is the application client ID sent as the Client-Id header.
	// Also read from the TWITCH_CLIENT_ID environment variable.
	ClientID string `mapstructure:"client_id"`

	// BearerToken is an optional OAuth token sent verbatim as
	// "Authorization: Bearer <token>".
	BearerToken string `mapstructure:"bearer_token"`

	// BaseURL overrides the production API root. Mainly for tests and
	// local mocks.
	BaseURL string `mapstructure:"base_url"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `mapstructure:"user_agent"`
}

// RedisConfig holds the optional Redis connection used for rate limit
// tracking and response caching.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the Redis-backed response cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ServerConfig holds the helix-proxy listen settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is one of json, console, auto. Auto picks console when
	// stderr is a terminal and json otherwise.
	Format string `mapstructure:"format"`
}
