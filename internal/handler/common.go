package handler

import (
	"errors"
	"net/http"

	"go-gin-meetup/internal/middleware"
	apperrors "go-gin-meetup/pkg/app_errors"
	"go-gin-meetup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  "invalid_input",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  "invalid_input",
		})
		return err
	}
	return nil
}

// ParamUUID 解析路徑參數，失敗時直接回 400
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  "invalid_input",
		})
		return uuid.Nil, false
	}
	return id, true
}

// Caller 取得登入使用者；路由沒有掛 Auth 時回 401
func Caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
			"code":  "unauthorized",
		})
	}
	return id, ok
}

type errorMapping struct {
	target error
	status int
	code   string
}

// 順序有意義：先比對較具體的錯誤
var errorMappings = []errorMapping{
	{apperrors.ErrEventNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{apperrors.ErrInvalidOperation, http.StatusBadRequest, "invalid_operation"},
	{apperrors.ErrNoSuchRequest, http.StatusBadRequest, "no_such_request"},
	{apperrors.ErrNotAParticipant, http.StatusBadRequest, "not_a_participant"},
	{apperrors.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{apperrors.ErrAlreadyRequested, http.StatusConflict, "already_requested"},
	{apperrors.ErrEventFull, http.StatusConflict, "event_full"},
	{apperrors.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{apperrors.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
}

// handleError 將 service 錯誤轉成 HTTP 回應；未知錯誤一律 500 且不回傳細節
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			log.Warn("Request rejected", zap.String("code", m.code))
			c.JSON(m.status, gin.H{"error": err.Error(), "code": m.code})
			return
		}
	}

	log.Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  "internal",
	})
}
