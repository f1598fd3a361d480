package handler

import (
	"net/http"
	"time"

	"go-gin-meetup/internal/auth"
	"go-gin-meetup/internal/middleware"
	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterConfig 建立 router 所需的依賴
type RouterConfig struct {
	AllowedOrigin string
	Tokens        *auth.TokenIssuer
	Events        service.EventService
	Auth          service.AuthService
	Notifications service.NotificationService
	// 未設定時使用 DefaultRateLimits
	RateLimits *RateLimits
}

type RateLimits struct {
	GlobalRequests int
	GlobalWindow   time.Duration
	AuthRequests   int
	AuthWindow     time.Duration
}

var DefaultRateLimits = RateLimits{
	GlobalRequests: 100,
	GlobalWindow:   15 * time.Minute,
	AuthRequests:   10,
	AuthWindow:     time.Hour,
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	limits := DefaultRateLimits
	if cfg.RateLimits != nil {
		limits = *cfg.RateLimits
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.AllowedOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.RateLimit(middleware.PerWindow(limits.GlobalRequests, limits.GlobalWindow)))
	requireAuth := middleware.Auth(cfg.Tokens)
	authLimiter := middleware.RateLimit(middleware.PerWindow(limits.AuthRequests, limits.AuthWindow))

	NewAuthHandler(cfg.Auth).RegisterRoutes(api, requireAuth, authLimiter)
	NewEventHandler(cfg.Events).RegisterRoutes(api, requireAuth)
	NewNotificationHandler(cfg.Notifications).RegisterRoutes(api, requireAuth)

	return r
}
