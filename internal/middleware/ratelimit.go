package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding-window request counter. One instance guards the
// whole API keyed by client IP; a second, tighter instance guards the paid
// generation route keyed by user so one account cannot burn through the
// image provider quota from many addresses.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
	go rl.janitor()
	return rl
}

// Allow records a hit for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	hits := rl.prune(rl.buckets[key], now)
	if len(hits) >= rl.limit {
		rl.buckets[key] = hits
		return false
	}
	rl.buckets[key] = append(hits, now)
	return true
}

// prune drops hits older than the window, reusing the backing array.
func (rl *RateLimiter) prune(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// janitor evicts idle keys so the map does not grow with every IP that ever
// hit the API.
func (rl *RateLimiter) janitor() {
	tick := time.NewTicker(rl.window)
	for range tick.C {
		rl.mu.Lock()
		now := time.Now()
		for k, hits := range rl.buckets {
			if kept := rl.prune(hits, now); len(kept) == 0 {
				delete(rl.buckets, k)
			} else {
				rl.buckets[k] = kept
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit limits by client IP. Applied to the whole router.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimitPerUser limits by authenticated user, falling back to IP before
// auth has run. Meant for routes that spend tokens or call paid providers.
func RateLimitPerUser(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := GetUserID(c); userID != 0 {
			key = "u:" + strconv.FormatUint(uint64(userID), 10)
		}
		if !rl.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, slow down"})
			return
		}
		c.Next()
	}
}
