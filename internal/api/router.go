// router.go - Gin engine setup shared by cmd/api and the handler tests

package api

import (
	"net/http"

	"github.com/bosocmputer/pharmacist_assistant/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the middleware settings.
type RouterConfig struct {
	AllowedOrigins string
	MaxUploadBytes int64
	Limiter        *ClientRateLimiter // nil disables per-client limiting
}

// NewRouter builds the engine with middleware and all routes
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	if cfg.Limiter != nil {
		router.Use(cfg.Limiter.Middleware())
	}
	router.Use(RequestSizeLimit(cfg.MaxUploadBytes))

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "pharmacist-assistant",
			"version": "1.0.0",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(router)
	return router
}
