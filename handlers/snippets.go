package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamconnect/go-services/internal/service"
	"github.com/teamconnect/go-services/pkg/middleware"
)

// SnippetsHandler exposes shared code snippets.
type SnippetsHandler struct {
	svc *service.Service
}

func NewSnippetsHandler(svc *service.Service) *SnippetsHandler {
	return &SnippetsHandler{svc: svc}
}

// Register routes under /snippets
func (h *SnippetsHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/snippets")
	s.GET("", h.List)
	s.POST("", h.Create)
	s.DELETE("/:id", h.Delete)
}

func (h *SnippetsHandler) List(c *gin.Context) {
	recs, err := h.svc.ListSnippets(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *SnippetsHandler) Create(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		Code     string `json:"code" binding:"required"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.CreateSnippet(c.Request.Context(), middleware.SessionToken(c), req.Title, req.Code, req.Language)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *SnippetsHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSnippet(c.Request.Context(), middleware.SessionToken(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
