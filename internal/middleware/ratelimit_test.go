package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRateLimited(t *testing.T, mr *miniredis.Miniredis, limit int) http.Handler {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit:auth",
	}
	return RateLimitMiddleware(client, cfg, zap.NewNop())(okHandler())
}

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Feature: storefront, Property 21: Rate limiting blocks excessive requests
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the limit passes, the rest get 429", prop.ForAll(
		func(limit int, excess int) bool {
			mr := miniredis.RunT(t)
			handler := newRateLimited(t, mr, limit)

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				switch hit(handler, "192.168.1.100:5000").Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}
			return passed == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitWindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimited(t, mr, 1)

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1").Code)
	blocked := hit(handler, "10.0.0.1:1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	mr.FastForward(2 * time.Minute)

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1").Code)
}

func TestRateLimitCountsClientsSeparately(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimited(t, mr, 1)

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1").Code)
}

func TestRateLimitHeaders(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimited(t, mr, 5)

	w := hit(handler, "10.0.0.3:1")

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimited(t, mr, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.4:1").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.4:1").Code)
}
