package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8")) // independent key

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4")) // window slid
}

func TestRateLimitPerUserKeysByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limited := RateLimitPerUser(NewRateLimiter(1, time.Minute))
	r.POST("/generations", func(c *gin.Context) {
		c.Set("user_id", uint(42))
	}, limited, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generations", nil)
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
