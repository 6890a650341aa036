package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamconnect/go-services/internal/service"
	"github.com/teamconnect/go-services/pkg/middleware"
)

// LoginRequest carries the credential form of a login call.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	svc *service.Service
}

func NewAuthHandler(svc *service.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
	a.GET("/me", h.Me)
}

// Login verifies credentials and hands out a session token, doubled as an
// httponly cookie for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": req.Username})
}

// Logout destroys the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		writeError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me reports the current user and a fresh admin flag.
func (h *AuthHandler) Me(c *gin.Context) {
	username, isAdmin, err := h.svc.CurrentUser(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": username, "isAdmin": isAdmin})
}
