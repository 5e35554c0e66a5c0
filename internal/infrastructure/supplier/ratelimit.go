// Package supplier contains the HTTP adapters for wholesale supplier
// APIs, plus the client-side rate limiting they share.
package supplier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Rate limiter defaults, sized for the SYSCOM quota of 60 requests per
// minute with headroom for clock skew.
const (
	DefaultMaxRequests = 48
	DefaultWindow      = 60 * time.Second
	DefaultMinDelay    = 1250 * time.Millisecond

	// windowMargin is added when sleeping until the oldest request
	// leaves the window, so a slot is genuinely free on wake.
	windowMargin = 200 * time.Millisecond

	// throttleThreshold is the window usage ratio above which the
	// limiter starts spacing requests further apart.
	throttleThreshold = 0.85
)

// Stats is a point-in-time snapshot of the limiter state
type Stats struct {
	RequestsInWindow int           `json:"requests_in_window"`
	SlotsAvailable   int           `json:"slots_available"`
	TimeToNextSlot   time.Duration `json:"time_to_next_slot"`
	IsThrottling     bool          `json:"is_throttling"`
}

// RateLimiter enforces a sliding-window request budget with a minimum
// spacing between consecutive requests. Safe for concurrent use.
type RateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	minDelay    time.Duration
	timestamps  []time.Time
	lastRequest time.Time
	logger      *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter. Non-positive arguments fall back to
// the defaults.
func NewRateLimiter(maxRequests int, window, minDelay time.Duration, logger *zap.Logger) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if minDelay < 0 {
		minDelay = DefaultMinDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		minDelay:    minDelay,
		logger:      logger,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// WaitForSlot blocks until a request may be issued, then records it.
// It returns early only when the context is cancelled.
func (r *RateLimiter) WaitForSlot(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		r.evict(now)

		wait := r.nextWait(now)
		if wait <= 0 {
			r.timestamps = append(r.timestamps, now)
			r.lastRequest = now
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// nextWait computes how long the caller must still wait. Zero means a
// slot is free right now. Caller holds the lock.
func (r *RateLimiter) nextWait(now time.Time) time.Duration {
	var wait time.Duration

	if len(r.timestamps) >= r.maxRequests {
		oldest := r.timestamps[0]
		wait = oldest.Add(r.window).Sub(now) + windowMargin
	}

	if !r.lastRequest.IsZero() {
		spacing := r.minDelay
		if r.usage() >= throttleThreshold {
			spacing += r.minDelay / 2
		}
		if d := r.lastRequest.Add(spacing).Sub(now); d > wait {
			wait = d
		}
	}

	if wait > 0 && len(r.timestamps) >= r.maxRequests {
		r.logger.Debug("rate limit window full",
			zap.Int("requests_in_window", len(r.timestamps)),
			zap.Duration("wait", wait))
	}
	return wait
}

// GetStats reports the current window occupancy
func (r *RateLimiter) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evict(now)

	stats := Stats{
		RequestsInWindow: len(r.timestamps),
		SlotsAvailable:   r.maxRequests - len(r.timestamps),
		IsThrottling:     r.usage() >= 0.90,
	}
	if len(r.timestamps) >= r.maxRequests {
		stats.TimeToNextSlot = r.timestamps[0].Add(r.window).Sub(now)
		if stats.TimeToNextSlot < 0 {
			stats.TimeToNextSlot = 0
		}
	}
	return stats
}

// Reset clears the window, for tests and operator-triggered resets
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timestamps = r.timestamps[:0]
	r.lastRequest = time.Time{}
}

// evict drops timestamps that have left the window. Caller holds the lock.
func (r *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.timestamps) && !r.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.timestamps = append(r.timestamps[:0], r.timestamps[i:]...)
	}
}

// usage returns the window fill ratio. Caller holds the lock.
func (r *RateLimiter) usage() float64 {
	return float64(len(r.timestamps)) / float64(r.maxRequests)
}

// sleepCtx sleeps for d or until the context is cancelled
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
