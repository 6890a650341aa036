package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/teamconnect/go-services/internal/service"
	"github.com/teamconnect/go-services/pkg/middleware"
)

// FilesHandler exposes upload metadata and the byte blobs behind it.
type FilesHandler struct {
	svc *service.Service
}

func NewFilesHandler(svc *service.Service) *FilesHandler {
	return &FilesHandler{svc: svc}
}

// Register routes under /files
func (h *FilesHandler) Register(rg *gin.RouterGroup) {
	f := rg.Group("/files")
	f.GET("", h.List)
	f.POST("", h.Upload)
	f.GET("/:id/download", h.Download)
	f.DELETE("/:id", h.Delete)
}

func (h *FilesHandler) List(c *gin.Context) {
	recs, err := h.svc.ListFiles(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// Upload accepts a multipart form with a single "file" part.
func (h *FilesHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part required"})
		return
	}
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	id, rec, err := h.svc.Upload(
		c.Request.Context(),
		middleware.SessionToken(c),
		filepath.Base(fh.Filename),
		fh.Header.Get("Content-Type"),
		src,
		fh.Size,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "file": rec})
}

func (h *FilesHandler) Download(c *gin.Context) {
	rc, rec, err := h.svc.OpenFile(c.Request.Context(), middleware.SessionToken(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, rec.FileSize, rec.ContentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + rec.OriginalName + `"`,
	})
}

func (h *FilesHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteFile(c.Request.Context(), middleware.SessionToken(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
