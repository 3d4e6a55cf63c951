package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serve(e *echo.Echo, ip string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func newLoginServer(l *Limiter) *echo.Echo {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())
	return e
}

func TestLimiter_BlocksAfterBurst(t *testing.T) {
	e := newLoginServer(New(0.001, 2))

	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1", nil))
	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.1", nil))
	assert.Equal(t, http.StatusTooManyRequests, serve(e, "10.0.0.1", nil))

	// separate bucket per client address
	assert.Equal(t, http.StatusOK, serve(e, "10.0.0.2", nil))
}

func TestLimiter_RotatingHeadersShareOneBucket(t *testing.T) {
	l := New(0.001, 2)
	e := newLoginServer(l)

	passed := 0
	for i := 0; i < 50; i++ {
		code := serve(e, "203.0.113.7", map[string]string{
			"X-Device-ID":     fmt.Sprintf("dev-%d", i),
			"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i),
			"X-Real-IP":       fmt.Sprintf("192.0.2.%d", i),
		})
		if code == http.StatusOK {
			passed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, code)
		}
	}

	assert.Equal(t, 2, passed)
	assert.Len(t, l.visitors, 1)
}

func TestLimiter_CleanupDropsIdle(t *testing.T) {
	l := New(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }
	l.get("ip:1")
	l.get("ip:2")

	now = now.Add(2 * time.Minute)
	l.get("ip:2")
	now = now.Add(2 * time.Minute)
	l.Cleanup()

	_, has1 := l.visitors["ip:1"]
	_, has2 := l.visitors["ip:2"]
	assert.False(t, has1)
	assert.True(t, has2)
}
