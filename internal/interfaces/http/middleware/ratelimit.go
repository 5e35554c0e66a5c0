package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

// RateLimiter is a token bucket limiter keyed by client
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64
	capacity float64
	lastSeen map[string]time.Time
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

const (
	cleanupInterval = time.Minute
	bucketMaxIdle   = 5 * time.Minute
)

// NewRateLimiter creates a limiter allowing ratePerSecond requests
// sustained with bursts up to capacity. Idle client buckets are evicted
// in the background so the map stays bounded.
func NewRateLimiter(ratePerSecond float64, capacity int) *RateLimiter {
	return newRateLimiter(ratePerSecond, capacity, cleanupInterval, bucketMaxIdle)
}

func newRateLimiter(ratePerSecond float64, capacity int, tick, maxIdle time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     ratePerSecond,
		capacity: float64(capacity),
		lastSeen: make(map[string]time.Time),
	}
	go rl.cleanupLoop(tick, maxIdle)
	return rl
}

func (rl *RateLimiter) cleanupLoop(tick, maxIdle time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for range ticker.C {
		rl.Cleanup(maxIdle)
	}
}

// Allow reports whether the client identified by key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastFill: now}
		rl.buckets[key] = b
	}

	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens += elapsed * rl.rate
	if b.tokens > rl.capacity {
		b.tokens = rl.capacity
	}
	b.lastFill = now
	rl.lastSeen[key] = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Remaining returns how many requests the client can still make
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		return int(rl.capacity)
	}
	elapsed := time.Since(b.lastFill).Seconds()
	tokens := b.tokens + elapsed*rl.rate
	if tokens > rl.capacity {
		tokens = rl.capacity
	}
	return int(tokens)
}

// Cleanup drops buckets idle longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, seen := range rl.lastSeen {
		if seen.Before(cutoff) {
			delete(rl.buckets, key)
			delete(rl.lastSeen, key)
		}
	}
}

// RateLimit returns a middleware that limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.Allow(key) {
			c.Writer.Header().Set("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests"))
			return
		}
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
