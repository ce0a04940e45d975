package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func rateLimitedRouter(t *testing.T, client *redis.Client, cfg RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(client, cfg, zaptest.NewLogger(t)))
	router.GET("/probe", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func probe(router *gin.Engine) int {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_ThrottlesBeyondBurst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := rateLimitedRouter(t, client, RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstCapacity:     2,
	})

	assert.Equal(t, http.StatusOK, probe(router))
	assert.Equal(t, http.StatusOK, probe(router))

	code := probe(router)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	router := rateLimitedRouter(t, nil, RateLimiterConfig{Enabled: false})

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, probe(router))
	}
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	router := rateLimitedRouter(t, client, RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstCapacity:     1,
	})

	assert.Equal(t, http.StatusOK, probe(router))
	assert.Equal(t, http.StatusOK, probe(router))
}
