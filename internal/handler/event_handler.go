package handler

import (
	"net/http"
	"strings"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	events := api.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEventByID)

		authed := events.Group("", requireAuth)
		authed.POST("", h.CreateEvent)
		authed.GET("/me", h.GetMyEvents)
		authed.GET("/requests", h.ListIncomingRequests)
		authed.POST("/:id/requests", h.RequestToJoin)
		authed.POST("/:id/join", h.RequestToJoin)
		authed.PUT("/:id/requests/:userId", h.DecideJoinRequest)
		authed.POST("/:id/requests/:userId/accept", h.AcceptJoinRequest)
		authed.PUT("/:id/leave", h.LeaveEvent)
		authed.PATCH("/:id", h.UpdateEvent)
		authed.DELETE("/:id", h.DeleteEvent)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	City             string   `json:"city"`
	Date             string   `json:"date"`
	ParticipantLimit int      `json:"participantLimit"`
	Tags             []string `json:"tags"`
}

// UpdateEventRequest 未出現的欄位維持原值
type UpdateEventRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	Category         *string   `json:"category"`
	City             *string   `json:"city"`
	Date             *string   `json:"date"`
	ParticipantLimit *int      `json:"participantLimit"`
	Tags             *[]string `json:"tags"`
}

type DecideJoinRequestRequest struct {
	Action model.JoinDecision `json:"action" binding:"required"`
}

type ListEventsQuery struct {
	City     string   `form:"city"`
	Category string   `form:"category"`
	Tags     []string `form:"tags"`
	TagMode  string   `form:"tagMode"`
}

func (q ListEventsQuery) filter() model.EventFilter {
	// tags 可用逗號分隔，也可重複帶入
	tags := make([]string, 0, len(q.Tags))
	for _, raw := range q.Tags {
		tags = append(tags, strings.Split(raw, ",")...)
	}
	return model.EventFilter{
		City:     q.City,
		Category: q.Category,
		Tags:     model.NormalizeTags(tags),
		TagMode:  q.TagMode,
	}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateEvent(c, callerID, model.CreateEventParams{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		City:             req.City,
		Date:             req.Date,
		ParticipantLimit: req.ParticipantLimit,
		Tags:             req.Tags,
	})
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	var query ListEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	events, err := h.service.ListEvents(c, query.filter())
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEventByID(c *gin.Context) {
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	event, err := h.service.GetEventByID(c, eventID)
	if err != nil {
		handleError(c, err, "GetEventByID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetMyEvents(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}

	events, err := h.service.GetMyEvents(c, callerID)
	if err != nil {
		handleError(c, err, "GetMyEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListIncomingRequests(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}

	events, err := h.service.ListIncomingRequests(c, callerID)
	if err != nil {
		handleError(c, err, "ListIncomingRequests")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) RequestToJoin(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	event, err := h.service.RequestToJoin(c, callerID, eventID)
	if err != nil {
		handleError(c, err, "RequestToJoin")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DecideJoinRequest(c *gin.Context) {
	var req DecideJoinRequestRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	decision := model.JoinDecision(strings.ToLower(strings.TrimSpace(string(req.Action))))
	if !decision.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": `action must be "accept" or "decline"`,
			"code":  "invalid_input",
		})
		return
	}
	h.decide(c, decision, "DecideJoinRequest")
}

// AcceptJoinRequest 舊版路徑，等同 action=accept
func (h *EventHandler) AcceptJoinRequest(c *gin.Context) {
	h.decide(c, model.JoinDecisionAccept, "AcceptJoinRequest")
}

func (h *EventHandler) decide(c *gin.Context, decision model.JoinDecision, operation string) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	targetID, ok := ParamUUID(c, "userId")
	if !ok {
		return
	}

	event, err := h.service.DecideJoinRequest(c, callerID, eventID, targetID, decision)
	if err != nil {
		handleError(c, err, operation)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) LeaveEvent(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	event, err := h.service.LeaveEvent(c, callerID, eventID)
	if err != nil {
		handleError(c, err, "LeaveEvent")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	updated, err := h.service.UpdateEvent(c, callerID, eventID, model.UpdateEventParams{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		City:             req.City,
		Date:             req.Date,
		ParticipantLimit: req.ParticipantLimit,
		Tags:             req.Tags,
	})
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteEvent(c, callerID, eventID); err != nil {
		handleError(c, err, "DeleteEvent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
