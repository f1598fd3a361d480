package middleware

import (
	"net/http"
	"strings"

	"go-gin-meetup/internal/auth"
	"go-gin-meetup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	callerIDKey = "caller_id"
	// LegacyTokenHeader 舊版前端使用的 header
	LegacyTokenHeader = "x-auth-token"
)

// Auth 驗證 Bearer token（或舊版 x-auth-token），成功後將使用者 id 放入 context
func Auth(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(c.GetHeader(LegacyTokenHeader))
		}
		if token == "" {
			abortUnauthorized(c, "missing token")
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(callerIDKey, userID)
		c.Next()
	}
}

// CallerID 取得 Auth 解析出的使用者 id
func CallerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(callerIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abortUnauthorized(c *gin.Context, reason string) {
	logger.WithComponent("http").Warn("Unauthorized request",
		zap.String("path", c.FullPath()),
		zap.String("reason", reason),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "Unauthorized",
		"code":  "unauthorized",
	})
}
