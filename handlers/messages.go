package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamconnect/go-services/internal/service"
	"github.com/teamconnect/go-services/pkg/middleware"
)

// MessagesHandler exposes the shared message board.
type MessagesHandler struct {
	svc *service.Service
}

func NewMessagesHandler(svc *service.Service) *MessagesHandler {
	return &MessagesHandler{svc: svc}
}

// Register routes under /messages
func (h *MessagesHandler) Register(rg *gin.RouterGroup) {
	m := rg.Group("/messages")
	m.GET("", h.List)
	m.POST("", h.Post)
}

func (h *MessagesHandler) List(c *gin.Context) {
	recs, err := h.svc.ListMessages(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *MessagesHandler) Post(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.PostMessage(c.Request.Context(), middleware.SessionToken(c), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
