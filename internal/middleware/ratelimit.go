package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
}

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow takes one token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryAfter returns whole seconds until the next token
func (tb *TokenBucket) RetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens >= 1 {
		return 0
	}
	return int((1-tb.tokens)/tb.refillRate) + 1
}

func (tb *TokenBucket) idleSince(t time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill.Before(t)
}

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	name    string
	config  RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// NewRateLimiter creates an in-process limiter
func NewRateLimiter(name string, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{name: name, config: config, buckets: make(map[string]*TokenBucket)}
}

func (rl *RateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		b = NewTokenBucket(float64(rl.config.Limit), refillRate)
		rl.buckets[key] = b
	}
	return b
}

// Allow reports whether key may make another request
func (rl *RateLimiter) Allow(key string) (bool, int) {
	b := rl.bucket(key)
	if b.Allow() {
		return true, 0
	}
	return false, b.RetryAfter()
}

// Sweep drops buckets that have been idle for longer than maxIdle
func (rl *RateLimiter) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		if b.idleSince(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets until ctx is cancelled
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.config.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep(2 * rl.config.Window)
		}
	}
}

// Middleware limits requests per client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	m := metrics.Get()
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(c.ClientIP())
		if !allowed {
			m.RateLimitExceededTotal.WithLabelValues(rl.name).Inc()
			abortRateLimited(c, rl.config.Limit, retryAfter)
			return
		}
		c.Next()
	}
}

func abortRateLimited(c *gin.Context, limit, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", "0")
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Rate limit exceeded").
		WithDetails(map[string]interface{}{"retry_after": retryAfter})
	c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
}

// WindowCounter is a shared fixed-window counter, e.g. Redis INCR with expiry
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// SharedRateLimit limits requests per client IP across API nodes. When the
// counter store fails the request is let through.
func SharedRateLimit(name string, counter WindowCounter, config RateLimitConfig, logger zerolog.Logger) gin.HandlerFunc {
	m := metrics.Get()
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		key := "rate_limit:" + name + ":" + c.ClientIP()
		n, err := counter.IncrWindow(ctx, key, config.Window)
		if err != nil {
			logger.Warn().Err(err).Str("limiter", name).Msg("Shared rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if n > int64(config.Limit) {
			m.RateLimitExceededTotal.WithLabelValues(name).Inc()
			abortRateLimited(c, config.Limit, int(config.Window.Seconds()))
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(config.Limit)-n, 10))
		c.Next()
	}
}
