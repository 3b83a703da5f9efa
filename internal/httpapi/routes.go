// Package httpapi exposes an editing session over HTTP.
package httpapi

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/example/imgedit/internal/editor"
)

// Handler serves one editor. Requests are serialised by mu.
type Handler struct {
	mu  sync.Mutex
	ed  *editor.Editor
	log *logrus.Entry
}

// NewHandler wraps ed.
func NewHandler(ed *editor.Editor) *Handler {
	return &Handler{ed: ed, log: logrus.WithField("component", "httpapi")}
}

// InitRoutes builds the router.
func InitRoutes(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "imgedit",
		})
	})

	images := router.Group("/images")
	images.POST("", h.UploadImage)
	images.GET("", h.ListImages)
	images.PUT("/:id/select", h.SelectImage)
	images.DELETE("/:id", h.DeleteImage)
	images.GET("/:id/thumbnail", h.Thumbnail)

	current := router.Group("/current", h.requireImage)
	current.GET("", h.State)
	current.PUT("/filters", h.SetFilters)
	current.POST("/rotate/:dir", h.Rotate)
	current.POST("/flip/:axis", h.Flip)
	current.POST("/reset", h.Reset)
	current.POST("/crop", h.Crop)
	current.POST("/texts", h.AddText)
	current.DELETE("/texts/:id", h.DeleteText)
	current.GET("/export.png", h.Export)

	return router
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
