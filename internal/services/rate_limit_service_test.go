package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(requests int, window time.Duration, clock *time.Time) *RateLimitService {
	s := NewRateLimitService(RateLimitConfig{Requests: requests, Window: window})
	s.now = func() time.Time { return *clock }
	return s
}

func TestAllow_WithinBurst(t *testing.T) {
	clock := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	s := newTestRateLimiter(3, time.Minute, &clock)

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.Allow("192.168.1.1"))
	}
}

func TestAllow_Exceeded(t *testing.T) {
	clock := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	s := newTestRateLimiter(3, time.Minute, &clock)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Allow("192.168.1.1"))
	}

	err := s.Allow("192.168.1.1")
	require.Error(t, err)

	var rateLimitErr *RateLimitError
	require.True(t, errors.As(err, &rateLimitErr), "Error should be RateLimitError")
	assert.Equal(t, "192.168.1.1", rateLimitErr.Key)
	assert.Contains(t, rateLimitErr.Message, "Too many requests")
	assert.True(t, rateLimitErr.RetryAfter.After(clock))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	clock := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	s := newTestRateLimiter(1, time.Minute, &clock)

	require.NoError(t, s.Allow("a"))
	assert.Error(t, s.Allow("a"))
	assert.NoError(t, s.Allow("b"))
}

func TestAllow_Refills(t *testing.T) {
	clock := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	s := newTestRateLimiter(2, time.Minute, &clock)

	require.NoError(t, s.Allow("a"))
	require.NoError(t, s.Allow("a"))
	require.Error(t, s.Allow("a"))

	clock = clock.Add(30 * time.Second)
	assert.NoError(t, s.Allow("a"))
}

func TestCleanupExpiredRateLimits(t *testing.T) {
	clock := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	s := newTestRateLimiter(5, time.Minute, &clock)

	require.NoError(t, s.Allow("old"))
	clock = clock.Add(5 * time.Minute)
	require.NoError(t, s.Allow("fresh"))

	assert.Equal(t, 1, s.CleanupExpiredRateLimits())
	assert.Len(t, s.limiters, 1)
}
