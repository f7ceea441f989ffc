package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/cachewarden/cachewarden/internal/api/docs"
	"github.com/cachewarden/cachewarden/internal/api/handlers"
)

// RegisterRoutes mounts the two management endpoints, Prometheus scrape
// target, and swagger UI onto r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health)

	r.GET("/universe", h.Universe)
}
