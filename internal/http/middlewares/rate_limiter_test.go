package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounter_WindowResets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }

	ctx := context.Background()

	n, ttl, err := m.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, ttl)

	now = now.Add(20 * time.Second)
	n, ttl, _ = m.Hit(ctx, "k", time.Minute)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 40*time.Second, ttl)

	now = now.Add(40 * time.Second)
	n, _, _ = m.Hit(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCounter_KeysAreIndependent(t *testing.T) {
	m := NewMemoryCounter()
	ctx := context.Background()

	m.Hit(ctx, "a", time.Minute)
	m.Hit(ctx, "a", time.Minute)
	n, _, _ := m.Hit(ctx, "b", time.Minute)

	assert.Equal(t, int64(1), n)
}

type failingCounter struct{}

func (failingCounter) Hit(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis down")
}

func limitedRouter(c Counter, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(c, limit, time.Minute, nil)
	r.POST("/login", rl.Middleware("login", KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	r := limitedRouter(NewMemoryCounter(), 2)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		last = w
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), `"message"`)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	r := limitedRouter(failingCounter{}, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
