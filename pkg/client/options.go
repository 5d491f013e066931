package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Option configures a Client during construction.
type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. a mock
// server in tests or a local proxy. A trailing slash is removed.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client (30 second timeout).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithBearerToken attaches an OAuth bearer token to every request.
// Helix endpoints that require user or app access tokens need this.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.bearerToken = token
	}
}

// WithLogger replaces the default component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRedis enables the Redis-backed rate limit tracker so multiple
// processes share one view of the API's token bucket. Also a prerequisite
// for WithCache.
func WithRedis(redisClient *redis.Client) Option {
	return func(c *Client) {
		c.redis = redisClient
	}
}

// WithCache enables response caching for GET requests with a fixed TTL.
// Requires WithRedis.
func WithCache(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}
