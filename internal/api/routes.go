package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/healthz", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/clean", handler.Clean)     // POST /api/v1/clean
		v1.POST("/analyze", handler.Analyze) // POST /api/v1/analyze

		patterns := v1.Group("/patterns")
		{
			patterns.GET("", handler.ListPatterns)                   // GET /api/v1/patterns?domain=x
			patterns.GET("/ml-training", handler.MLTrainingPatterns) // GET /api/v1/patterns/ml-training
		}

		v1.GET("/wire-patterns", handler.ListWirePatterns) // GET /api/v1/wire-patterns
		v1.GET("/stats", handler.Stats)                    // GET /api/v1/stats
	}
}
