package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	helixPointsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "helix_points_remaining",
		Help: "Points remaining in the current Helix rate limit bucket",
	})

	helixPointsLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "helix_points_limit",
		Help: "Capacity of the Helix rate limit bucket as last reported",
	})

	helixRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helix_rate_limit_blocks_total",
		Help: "Total number of requests blocked at the critical point threshold",
	})

	helixRateLimitWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helix_rate_limit_warnings_total",
		Help: "Total number of requests allowed inside the warning band",
	})
)

// Tracker monitors the Helix rate limit bucket and gates requests.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current rate limit state from Redis.
// Returns a default healthy state if no data exists in Redis.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	pointsRemaining, err := t.redis.Get(ctx, RedisKeyPointsRemaining).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get points remaining: %w", err)
	}

	// No state yet means nobody has talked to the upstream; assume a full
	// default bucket rather than blocking the first request.
	if err == redis.Nil {
		t.logger.Debug().Msg("no rate limit state in redis, assuming full bucket")
		now := time.Now()
		return &State{
			PointsRemaining: 2 * PointThresholdHealthy,
			ResetAt:         now.Add(time.Minute),
			LastUpdate:      now,
			IsHealthy:       true,
		}, nil
	}

	limit, err := t.redis.Get(ctx, RedisKeyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limit: %w", err)
	}

	resetTimestamp, err := t.redis.Get(ctx, RedisKeyResetTimestamp).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get reset timestamp: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		lastUpdate, err = time.Parse(time.RFC3339Nano, lastUpdateStr)
		if err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	state := &State{
		PointsRemaining: pointsRemaining,
		Limit:           limit,
		ResetAt:         time.Unix(resetTimestamp, 0),
		LastUpdate:      lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

// UpdateFromHeaders parses the Helix rate limit headers and updates the
// shared Redis state. Responses without rate limit headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainingStr := headers.Get("Ratelimit-Remaining")
	if remainingStr == "" {
		return nil
	}

	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return fmt.Errorf("parse Ratelimit-Remaining header: %w", err)
	}

	resetStr := headers.Get("Ratelimit-Reset")
	if resetStr == "" {
		return fmt.Errorf("Ratelimit-Reset header missing")
	}

	// Unlike window-relative schemes, Helix sends the reset as an absolute
	// Unix timestamp in seconds.
	resetUnix, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return fmt.Errorf("parse Ratelimit-Reset header: %w", err)
	}

	limit := 0
	if limitStr := headers.Get("Ratelimit-Limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("parse Ratelimit-Limit header: %w", err)
		}
	}

	now := time.Now()
	state := &State{
		PointsRemaining: remaining,
		Limit:           limit,
		ResetAt:         time.Unix(resetUnix, 0),
		LastUpdate:      now,
	}
	state.UpdateHealth()

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyPointsRemaining, remaining, 0)
	pipe.Set(ctx, RedisKeyLimit, limit, 0)
	pipe.Set(ctx, RedisKeyResetTimestamp, state.ResetAt.Unix(), 0)
	pipe.Set(ctx, RedisKeyLastUpdate, now.Format(time.RFC3339Nano), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	helixPointsRemaining.Set(float64(remaining))
	if limit > 0 {
		helixPointsLimit.Set(float64(limit))
	}

	switch {
	case state.NeedsCriticalBlock():
		t.logger.Error().
			Int("points_remaining", remaining).
			Time("reset_at", state.ResetAt).
			Msg("rate limit bucket critical, requests will be blocked")
	case state.InWarningBand():
		t.logger.Warn().
			Int("points_remaining", remaining).
			Time("reset_at", state.ResetAt).
			Msg("rate limit bucket low")
	default:
		t.logger.Debug().
			Int("points_remaining", remaining).
			Int("limit", limit).
			Bool("is_healthy", state.IsHealthy).
			Msg("rate limit state updated")
	}

	return nil
}

// ShouldAllowRequest checks if a request should be allowed given the current
// bucket state. Returns false only when the bucket is critically low and its
// reset is still in the future; a bucket past its reset is assumed refilled.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get rate limit state: %w", err)
	}

	if state.NeedsCriticalBlock() {
		wait := state.TimeUntilReset()
		if wait > 0 {
			t.logger.Error().
				Int("points_remaining", state.PointsRemaining).
				Dur("wait_duration", wait).
				Msg("rate limit bucket critical, blocking request")

			helixRateLimitBlocksTotal.Inc()
			return false, nil
		}

		t.logger.Debug().
			Time("reset_at", state.ResetAt).
			Msg("rate limit bucket past reset, assuming refill")
		return true, nil
	}

	if state.InWarningBand() {
		t.logger.Warn().
			Int("points_remaining", state.PointsRemaining).
			Msg("rate limit bucket in warning band")

		helixRateLimitWarningsTotal.Inc()
	}

	return true, nil
}
