package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/beaconlabs/beacon/internal/model"
)

// RateLimiter is a per-client token bucket. Buckets refill continuously at
// Rate tokens per Window and hold at most Rate+Burst tokens, so a quiet
// client can absorb a burst without earning a higher sustained rate.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	rate     int
	window   time.Duration
	capacity float64
	stopCh   chan struct{}
}

type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Sustained requests per window (default 100)
	Window  time.Duration // Refill window (default 1 minute)
	Burst   int           // Extra capacity on top of Rate (default 20)
	Cleanup time.Duration // Idle bucket sweep interval (default 5 minutes)
}

// NewRateLimiter creates a rate limiter and starts its idle-bucket sweeper
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		clients:  make(map[string]*clientBucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		capacity: float64(cfg.Rate + cfg.Burst),
		stopCh:   make(chan struct{}),
	}

	go rl.sweep(cfg.Cleanup)

	return rl
}

// Stop terminates the sweeper goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdle()
		case <-rl.stopCh:
			return
		}
	}
}

// dropIdle removes buckets idle long enough to have fully refilled anyway
func (rl *RateLimiter) dropIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-2 * rl.window)
	for key, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// Allow spends one token for key. When denied, retryAfter tells the client
// how long until a token becomes available.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.clients[key]
	if !ok {
		b = &clientBucket{tokens: rl.capacity}
		rl.clients[key] = b
	} else {
		refill := now.Sub(b.lastSeen).Seconds() * rl.refillPerSecond()
		b.tokens = math.Min(rl.capacity, b.tokens+refill)
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}

	wait := time.Duration((1 - b.tokens) / rl.refillPerSecond() * float64(time.Second))
	return false, 0, wait
}

func (rl *RateLimiter) refillPerSecond() float64 {
	return float64(rl.rate) / rl.window.Seconds()
}

// RateLimit returns a middleware that rejects over-limit clients with a
// problem+json 429 and standard rate limit headers
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, retryAfter := limiter.Allow(ClientKey(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				model.NewRateLimitError(seconds).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
