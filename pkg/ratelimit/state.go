// Package ratelimit implements Helix rate limit bucket tracking and request
// gating. It monitors the Ratelimit-Limit, Ratelimit-Remaining and
// Ratelimit-Reset response headers so that cooperating processes stop sending
// requests before the upstream starts answering 429.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyPointsRemaining = "helix:rate_limit:points_remaining"
	RedisKeyLimit           = "helix:rate_limit:limit"
	RedisKeyResetTimestamp  = "helix:rate_limit:reset_timestamp"
	RedisKeyLastUpdate      = "helix:rate_limit:last_update"
)

// Thresholds for rate limit decisions, in bucket points. The default Helix
// bucket holds 800 points per minute; the thresholds are sized against that.
const (
	// PointThresholdCritical blocks all requests when remaining points fall
	// below this value and the bucket has not reset yet.
	PointThresholdCritical = 20

	// PointThresholdWarning marks the warning band. Requests are still
	// allowed but each one is logged and counted.
	PointThresholdWarning = 100

	// PointThresholdHealthy indicates normal operation. At or above this
	// value no restrictions apply and no warnings are emitted.
	PointThresholdHealthy = 400
)

// State is the rate limit bucket state as last reported by the upstream.
// It is shared across all client instances via Redis.
type State struct {
	// PointsRemaining is the number of points left in the bucket,
	// extracted from the Ratelimit-Remaining header.
	PointsRemaining int `json:"points_remaining"`

	// Limit is the bucket capacity, extracted from the Ratelimit-Limit
	// header. Zero when the upstream did not report it.
	Limit int `json:"limit"`

	// ResetAt is when the bucket is full again, from the Ratelimit-Reset
	// header (a Unix timestamp in seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was written.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when PointsRemaining >= PointThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked until the
// bucket resets.
func (s *State) NeedsCriticalBlock() bool {
	return s.PointsRemaining < PointThresholdCritical
}

// InWarningBand returns true if remaining points are low enough to warn
// about but not low enough to block.
func (s *State) InWarningBand() bool {
	return s.PointsRemaining < PointThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the bucket refills.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field from current PointsRemaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.PointsRemaining >= PointThresholdHealthy
}
