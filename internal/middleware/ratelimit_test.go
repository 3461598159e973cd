package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_AllowAndRefill(t *testing.T) {
	tb := NewTokenBucket(2, 1000)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.GreaterOrEqual(t, tb.RetryAfter(), 1)

	time.Sleep(5 * time.Millisecond)
	assert.True(t, tb.Allow(), "bucket should refill over time")
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter("test", RateLimitConfig{Limit: 1, Window: time.Hour})

	ok, _ := rl.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, retry := rl.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Greater(t, retry, 0)

	ok, _ = rl.Allow("2.2.2.2")
	assert.True(t, ok, "other clients have their own bucket")
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter("test", RateLimitConfig{Limit: 5, Window: time.Minute})
	rl.Allow("a")
	rl.Allow("b")

	assert.Equal(t, 0, rl.Sweep(time.Hour))
	time.Sleep(2 * time.Millisecond)
	assert.Equal(t, 2, rl.Sweep(time.Millisecond))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter("test", RateLimitConfig{Limit: 2, Window: time.Hour})
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestSharedRateLimit(t *testing.T) {
	counter := &memCounter{}
	r := gin.New()
	r.Use(SharedRateLimit("auth", counter, RateLimitConfig{Limit: 1, Window: time.Minute}, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSharedRateLimit_FailsOpen(t *testing.T) {
	counter := &memCounter{err: errors.New("redis down")}
	r := gin.New()
	r.Use(SharedRateLimit("auth", counter, RateLimitConfig{Limit: 1, Window: time.Minute}, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
