// Package httpmiddleware holds gin middleware shared by the portal's
// HTTP surface.
package httpmiddleware

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit enforces a per-client-IP limit in front of every route.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}
		if !l.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

// TokenBucket is an in-memory per-key limiter for single-process
// deployments: each key refills at perMinute tokens up to burst.
type TokenBucket struct {
	burst     int
	perMinute int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter allowing perMinute sustained requests
// per key with bursts up to burst. A non-positive burst defaults to the
// per-minute rate.
func NewTokenBucket(perMinute, burst int) *TokenBucket {
	if burst <= 0 {
		burst = perMinute
	}
	return &TokenBucket{
		burst:     burst,
		perMinute: perMinute,
		buckets:   make(map[string]*bucket),
	}
}

// Allow takes one token for key, refilling by elapsed time first.
func (l *TokenBucket) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), last: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.last).Minutes() * float64(l.perMinute)
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RedisWindow is a fixed-window limiter shared across processes, backed
// by an INCR-with-expiry counter per key and minute.
type RedisWindow struct {
	client    *redis.Client
	perMinute int
	prefix    string
}

// NewRedisWindow creates a shared limiter allowing perMinute requests
// per key across every process using the same redis.
func NewRedisWindow(client *redis.Client, perMinute int) *RedisWindow {
	return &RedisWindow{client: client, perMinute: perMinute, prefix: "portal:ratelimit:"}
}

// Allow counts the request in the current minute's window. Redis being
// unreachable fails open; a throttle must not take the portal down with it.
func (l *RedisWindow) Allow(ctx context.Context, key string) bool {
	window := l.prefix + key + ":" + time.Now().UTC().Format("200601021504")
	count, err := l.client.Incr(ctx, window).Result()
	if err != nil {
		log.Printf("ratelimit: redis incr failed, allowing request: %v", err)
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, window, 2*time.Minute)
	}
	return count <= int64(l.perMinute)
}
