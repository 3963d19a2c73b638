package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// Limiter is a token-bucket gate keyed by an opaque caller identifier.
// Buckets live in a go-cache store so idle callers are evicted instead of
// accumulating forever.
type Limiter struct {
	mu       sync.Mutex
	buckets  *cache.Cache
	capacity float64
	window   time.Duration
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter allows maxCalls per window per caller key, refilling
// continuously rather than on window boundaries.
func NewLimiter(maxCalls int, window time.Duration) *Limiter {
	return &Limiter{
		buckets:  cache.New(1*time.Hour, 10*time.Minute),
		capacity: float64(maxCalls),
		window:   window,
		now:      time.Now,
	}
}

// Allow takes one token from the caller's bucket. A fresh caller starts
// with a full bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	b := &bucket{tokens: l.capacity, last: now}
	if x, found := l.buckets.Get(key); found {
		b = x.(*bucket)
	}

	// Continuous refill proportional to elapsed time
	elapsed := now.Sub(b.last)
	refill := l.capacity * float64(elapsed) / float64(l.window)
	b.tokens += refill
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.last = now

	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}
	l.buckets.Set(key, b, cache.DefaultExpiration)

	return allowed
}

// CallerKey identifies the caller: the session header when present,
// otherwise the network origin.
func CallerKey(ctx *fiber.Ctx) string {
	if sessionID := ctx.Get("X-Session-ID"); sessionID != "" {
		return sessionID
	}
	return ctx.IP()
}

// Middleware gates a route group on the limiter. Exhausted buckets answer
// with a distinct 429 payload, not a processing error.
func (l *Limiter) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !l.Allow(CallerKey(ctx)) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Rate limit exceeded. Please slow down.",
				"status":  "rate_limited",
			})
		}
		return ctx.Next()
	}
}
