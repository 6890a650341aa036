package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamconnect/go-services/internal/service"
	"github.com/teamconnect/go-services/pkg/middleware"
)

// AdminHandler exposes account management and the audit trail.
type AdminHandler struct {
	svc *service.Service
}

func NewAdminHandler(svc *service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Register routes under /admin and the shared activity feed.
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/admin")
	a.GET("/users", h.ListUsers)
	a.POST("/users", h.CreateUser)
	a.GET("/activity", h.Activity(50))

	// dashboard feed, visible to any authenticated user
	rg.GET("/activity", h.Activity(10))
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Admin    bool   `json:"admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.CreateUser(c.Request.Context(), middleware.SessionToken(c), req.Username, req.Password, req.Admin); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": req.Username})
}

// Activity returns a handler serving the newest entries, capped by defaultLimit
// unless the query overrides it downward.
func (h *AdminHandler) Activity(defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultLimit
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
				limit = n
			}
		}
		entries, err := h.svc.RecentActivity(c.Request.Context(), middleware.SessionToken(c), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
