package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter records one hit for key in a fixed window and reports the running
// count and the time left until the window resets.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// MemoryCounter is a per-process Counter, used when no Redis is configured.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]

	if !ok || !now.Before(b.windowEnd) {
		m.sweep(now)
		m.clients[key] = &clientBucket{count: 1, windowEnd: now.Add(window)}
		return 1, window, nil
	}

	b.count++
	return b.count, b.windowEnd.Sub(now), nil
}

// sweep drops expired buckets so idle clients do not accumulate. Caller holds mu.
func (m *MemoryCounter) sweep(now time.Time) {
	for k, b := range m.clients {
		if !now.Before(b.windowEnd) {
			delete(m.clients, k)
		}
	}
}

type RateLimiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	log     *slog.Logger
}

func NewRateLimiter(counter Counter, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	if log == nil {
		log = slog.Default()
	}

	return &RateLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		log:     log,
	}
}

// Middleware enforces the limit per derived key. A failing counter lets the
// request through.
func (rl *RateLimiter) Middleware(scope string, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		count, ttl, err := rl.counter.Hit(c.Request.Context(), scope+":"+key, rl.window)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate_limit_counter_failed", "scope", scope, "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(math.Ceil(ttl.Seconds()))

			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abort(c, http.StatusTooManyRequests, "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
