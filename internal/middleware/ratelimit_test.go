package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-gin-meetup/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestPerWindow(t *testing.T) {
	limit, burst := middleware.PerWindow(100, 15*time.Minute)

	assert.Equal(t, 100, burst)
	assert.Equal(t, rate.Every(9*time.Second), limit)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", middleware.RateLimit(middleware.PerWindow(3, time.Hour)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))

	// 不同 IP 各自計算
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}
