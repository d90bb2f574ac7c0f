package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Page serves an HTML file from the web root
func (h *Handler) Page(file string) gin.HandlerFunc {
	path := filepath.Join(h.opts.WebRoot, file)
	return func(c *gin.Context) {
		c.File(path)
	}
}

// StaticDir is the directory served under /static
func (h *Handler) StaticDir() string {
	return filepath.Join(h.opts.WebRoot, "static")
}

// Health reports whether the store answers
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.WithError(err).Error("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodshare",
	})
}
