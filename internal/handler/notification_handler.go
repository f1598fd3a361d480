package handler

import (
	"net/http"

	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router := api.Group("/notifications", requireAuth)
	{
		router.GET("", h.List)
		router.PUT("/:id/read", h.MarkRead)
	}
}

type ListNotificationsQuery struct {
	Unread bool `form:"unread"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	var query ListNotificationsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	notifications, err := h.service.List(c, callerID, query.Unread)
	if err != nil {
		handleError(c, err, "ListNotifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	notificationID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	notification, err := h.service.MarkRead(c, callerID, notificationID)
	if err != nil {
		handleError(c, err, "MarkRead")
		return
	}
	c.JSON(http.StatusOK, notification)
}
