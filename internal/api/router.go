package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/config"
	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/services"
)

// SetupRouter wires middleware and routes. cw may be nil.
func SetupRouter(cfg *config.Config, table *instrument.Table, service *services.VoicingService, cw *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())
	router.Use(apimiddleware.CloudWatchMetrics(cw))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(table)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, table)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	auth := apimiddleware.NoAuth()
	if cfg.IsGatewayMode() {
		auth = apimiddleware.GatewayAuth()
	}

	v1 := router.Group("/api/v1")
	v1.Use(auth, apimiddleware.RequestTimeout(cfg.RequestTimeout))
	{
		voicingHandler := handlers.NewVoicingHandler(service)
		v1.GET("/instruments", voicingHandler.Instruments)
		v1.GET("/chords/resolve", voicingHandler.Resolve)
		v1.POST("/constraints/extract", voicingHandler.Extract)
		v1.POST("/constraints/validate", voicingHandler.Validate)
		v1.POST("/voicings", voicingHandler.Generate)
	}

	return router
}
