package routes

import (
	"github.com/gin-gonic/gin"

	"findash_backend/config"
	"findash_backend/controllers"
	"findash_backend/middleware"
	"findash_backend/services"
)

// SetupRoutes wires the API routes onto the router. The store and services
// are injected by the caller after they are initialized.
func SetupRoutes(router *gin.Engine, cfg *config.Config, store services.BarStore,
	syncSvc *services.SyncService, metricsSvc *services.MetricsService) {

	metricsController := controllers.NewMetricsController(metricsSvc, store)
	syncController := controllers.NewSyncController(syncSvc, cfg.Symbols)

	api := router.Group("/api/v1")
	{
		api.GET("/metrics", metricsController.GetSummaryMetrics)
		api.GET("/metrics/:symbol", metricsController.GetSymbolMetrics)

		stocks := api.Group("/stocks")
		{
			stocks.GET("/:symbol/bars", metricsController.GetBars)
		}

		// Sync mutates stored history, so it sits behind auth.
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			protected.POST("/sync", syncController.TriggerSync)
		}
	}
}
