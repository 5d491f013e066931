// Package client provides the core Helix HTTP client with typed cursor
// pagination, rate limit tracking, and optional response caching.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/twitch-helix-client/pkg/cache"
	"github.com/Sternrassler/twitch-helix-client/pkg/logging"
	"github.com/Sternrassler/twitch-helix-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Helix client operations.
var (
	helixRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helix_requests_total",
		Help: "Total Helix requests by endpoint and status",
	}, []string{"endpoint", "status"})

	helixRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helix_request_duration_seconds",
		Help:    "Helix request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	helixErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helix_errors_total",
		Help: "Total Helix client errors by kind",
	}, []string{"kind"})

	helixPagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helix_pages_fetched_total",
		Help: "Total pages fetched during cursor walks by endpoint",
	}, []string{"endpoint"})
)

const (
	// DefaultBaseURL is the production Helix API root.
	DefaultBaseURL = "https://api.twitch.tv/helix"

	defaultUserAgent = "twitch-helix-client/1.0"

	// maxIDsPerRequest caps batched lookups (users by login, games by
	// id); Helix rejects requests naming more than 100 resources.
	maxIDsPerRequest = 100
)

// knownMethods is the set of HTTP verbs the client accepts.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// normalizeMethod upper-cases the verb and rejects anything outside the
// known method set, before any network activity happens.
func normalizeMethod(method string) (string, error) {
	normalized := strings.ToUpper(method)
	if !knownMethods[normalized] {
		return "", &Error{
			Kind:    KindInvalidMethod,
			Message: fmt.Sprintf("unknown HTTP method %q", method),
		}
	}
	return normalized, nil
}

// Client is a Twitch Helix API client.
//
// A Client is safe for concurrent use; all configuration is read-only
// after New returns. Page walks within one CollectPages call are strictly
// sequential because each response cursor feeds the next request.
type Client struct {
	clientID    string
	bearerToken string
	userAgent   string
	baseURL     string

	httpClient  *http.Client
	redis       *redis.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// New creates a Helix client for the given application client ID.
// The zero configuration talks to the production API with a 30 second
// HTTP timeout, no rate limit tracking, and no caching; see the Option
// functions for the opt-in layers.
func New(clientID string, opts ...Option) (*Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	c := &Client{
		clientID:  clientID,
		userAgent: defaultUserAgent,
		baseURL:   DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.NewLogger("helix-client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Validate header material now so a bad client ID or token fails at
	// construction instead of on the first request
	if _, err := buildHeaders(c.clientID, c.bearerToken, c.userAgent); err != nil {
		return nil, err
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if c.cacheTTL > 0 && c.redis == nil {
		return nil, fmt.Errorf("response caching requires a redis client (use WithRedis)")
	}

	if c.redis != nil {
		c.rateLimiter = ratelimit.NewTracker(c.redis, c.logger)
		if c.cacheTTL > 0 {
			c.cache = cache.NewManager(c.redis)
		}
	}

	return c, nil
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs exactly one HTTP round trip and returns the status code and
// body bytes. The opt-in rate limit and cache layers apply here; there are
// no retries on any path.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) (int, []byte, error) {
	method, err := normalizeMethod(method)
	if err != nil {
		helixErrorsTotal.WithLabelValues(string(KindInvalidMethod)).Inc()
		return 0, nil, err
	}

	headers, err := buildHeaders(c.clientID, c.bearerToken, c.userAgent)
	if err != nil {
		helixErrorsTotal.WithLabelValues(string(KindInvalidHeaderValue)).Inc()
		return 0, nil, err
	}

	requestURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	// Step 1: rate limit gate
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return 0, nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Msg("Request blocked by rate limiter")
			helixRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			helixErrorsTotal.WithLabelValues(string(KindRateLimited)).Inc()
			return 0, nil, &Error{
				Kind:    KindRateLimited,
				Message: "request blocked: rate limit critical",
			}
		}
	}

	// Step 2: cache lookup for GET requests
	cacheKey := cache.Key{Endpoint: endpoint, QueryParams: params}
	if c.cache != nil && method == http.MethodGet {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Msg("Cache hit")
			helixRequestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
			return entry.StatusCode, entry.Data, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	// Step 3: execute the request
	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		helixErrorsTotal.WithLabelValues(string(KindRequestFailed)).Inc()
		return 0, nil, &Error{Kind: KindRequestFailed, Message: "create request", Err: err}
	}
	req.Header = headers

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Msg("Executing Helix request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	helixRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		helixErrorsTotal.WithLabelValues(string(KindRequestFailed)).Inc()
		helixRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return 0, nil, &Error{Kind: KindRequestFailed, Message: "execute request", Err: err}
	}
	defer resp.Body.Close()

	// Step 4: feed rate limit state from response headers
	if c.rateLimiter != nil {
		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		helixErrorsTotal.WithLabelValues(string(KindRequestFailed)).Inc()
		return 0, nil, &Error{Kind: KindRequestFailed, Message: "read response body", Err: err}
	}

	helixRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Helix request complete")

	// Step 5: store successful GET responses
	if c.cache != nil && method == http.MethodGet && resp.StatusCode == http.StatusOK {
		entry := cache.NewEntry(body, resp.StatusCode, resp.Header, c.cacheTTL)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return resp.StatusCode, body, nil
}
