package handler

import (
	"net/http"

	"go-gin-meetup/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes authLimiter 只套用在註冊與登入
func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup, requireAuth, authLimiter gin.HandlerFunc) {
	router := api.Group("/auth")
	{
		router.POST("/register", authLimiter, h.Register)
		router.POST("/login", authLimiter, h.Login)
		router.GET("/me", requireAuth, h.Me)
		router.PATCH("/profile", requireAuth, h.UpdateProfile)
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	City     string `json:"city"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name    *string   `json:"name"`
	City    *string   `json:"city"`
	Bio     *string   `json:"bio"`
	Hobbies *[]string `json:"hobbies"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	resp, err := h.service.Register(c, service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		City:     req.City,
	})
	if err != nil {
		handleError(c, err, "Register")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	resp, err := h.service.Login(c, service.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err, "Login")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}

	user, err := h.service.Me(c, callerID)
	if err != nil {
		handleError(c, err, "Me")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	callerID, ok := Caller(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.UpdateProfile(c, callerID, service.UpdateProfileParams{
		Name:    req.Name,
		City:    req.City,
		Bio:     req.Bio,
		Hobbies: req.Hobbies,
	})
	if err != nil {
		handleError(c, err, "UpdateProfile")
		return
	}
	c.JSON(http.StatusOK, user)
}
