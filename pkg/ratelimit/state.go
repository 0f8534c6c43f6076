// Package ratelimit tracks the Idalon API request budget and gates requests.
// It reads the X-RateLimit-Remaining and X-RateLimit-Reset response headers and
// shares the resulting state between client instances through Redis.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRequestsRemaining = "idalon:rate_limit:requests_remaining"
	RedisKeyResetTimestamp    = "idalon:rate_limit:reset_timestamp"
	RedisKeyLastUpdate        = "idalon:rate_limit:last_update"
)

// Response headers carrying the server's request budget.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Thresholds for rate limit decisions.
const (
	// RemainingThresholdCritical blocks requests when fewer requests remain in the window.
	RemainingThresholdCritical = 2

	// RemainingThresholdWarning throttles requests when fewer requests remain in the window.
	RemainingThresholdWarning = 10

	// RemainingThresholdHealthy marks the budget as healthy at or above this value.
	RemainingThresholdHealthy = 30
)

// RateLimitState is the last known request budget of the API.
type RateLimitState struct {
	// RequestsRemaining is the number of requests left in the current window.
	RequestsRemaining int `json:"requests_remaining"`

	// ResetAt is when the window resets, derived from X-RateLimit-Reset (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the state was last refreshed from response headers.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when RequestsRemaining >= RemainingThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if the budget is nearly spent and the window has not reset yet.
func (s *RateLimitState) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < RemainingThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *RateLimitState) NeedsThrottling() bool {
	return s.RequestsRemaining < RemainingThresholdWarning &&
		s.RequestsRemaining >= RemainingThresholdCritical &&
		s.TimeUntilReset() > 0
}

// TimeUntilReset returns the duration until the window resets, or 0 if it already has.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates IsHealthy from RequestsRemaining.
func (s *RateLimitState) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= RemainingThresholdHealthy
}
