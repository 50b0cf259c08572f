package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tilekeep/tilekeep/internal/infrastructure/http/v1/handler"
	"github.com/tilekeep/tilekeep/pkg/logger"
	"github.com/tilekeep/tilekeep/pkg/telemetry"
)

func NewRouter(handler *handler.Handler, l logger.Logger, telemetryEnabled bool) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled
	if telemetryEnabled {
		r.Use(telemetry.GinMiddleware("tilekeep"))
	}

	r.Use(ginZapLogger(l))

	api := r.Group("/api")
	v1 := api.Group("/v1")

	v1.GET("/healthz", handler.Healthz)
	v1.GET("/tile/:z/:x/:y", handler.Tile)

	v1.GET("/regions", handler.ListRegions)
	v1.POST("/regions", handler.CreateRegion)
	v1.DELETE("/regions/:id", handler.DeleteRegion)
	v1.POST("/regions/:id/download", handler.DownloadRegion)
	v1.POST("/regions/:id/cancel", handler.CancelRegion)
	v1.GET("/regions/:id/progress", handler.RegionProgress)

	// Not nested under /regions: a static segment there would collide with
	// the :id wildcard in the routing tree.
	v1.GET("/coverage", handler.RegionCoverage)

	v1.POST("/estimate", handler.Estimate)

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func ginZapLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		l.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
