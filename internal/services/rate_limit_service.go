package services

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitService keeps one token bucket per client key
type RateLimitService struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests int           // bucket size
	Window   time.Duration // time to refill the whole bucket
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests: 20,
		Window:   time.Minute,
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg RateLimitConfig) *RateLimitService {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		cfg = DefaultRateLimitConfig()
	}
	return &RateLimitService{
		limiters: make(map[string]*visitor),
		limit:    rate.Every(cfg.Window / time.Duration(cfg.Requests)),
		burst:    cfg.Requests,
		idleTTL:  3 * cfg.Window,
		now:      time.Now,
	}
}

// Allow consumes a token for key or returns a *RateLimitError
func (s *RateLimitService) Allow(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return &RateLimitError{Message: "Too many requests", RetryAfter: now.Add(time.Minute), Key: key}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		retryAfter := now.Add(delay)
		return &RateLimitError{
			Message:    fmt.Sprintf("Too many requests. Please try again after %s", retryAfter.Format("15:04:05")),
			RetryAfter: retryAfter,
			Key:        key,
		}
	}
	return nil
}

// CleanupExpiredRateLimits forgets keys idle longer than three windows
func (s *RateLimitService) CleanupExpiredRateLimits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for key, v := range s.limiters {
		if v.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}
