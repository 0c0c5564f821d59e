// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/storeops/rebalance/internal/api/handlers"
	"github.com/storeops/rebalance/internal/api/middleware"
	"github.com/storeops/rebalance/internal/export"
	"github.com/storeops/rebalance/internal/service"
)

type Services struct {
	Constraints *service.ConstraintService
	Suggestions *service.SuggestionService
	Engine      *service.EngineService
	Metrics     *service.MetricsService
	Exporter    *export.ManifestExporter
}

func NewRouter(services *Services, allowedOrigins []string, defaultTenant string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Tenant-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Tenant(defaultTenant))

	if services == nil {
		return router
	}

	if services.Constraints != nil {
		constraintHandler := handlers.NewConstraintHandler(services.Constraints)
		constraintGroup := apiGroup.Group("/constraints")
		{
			constraintGroup.GET("", constraintHandler.List)
			constraintGroup.PATCH("/:id", constraintHandler.Update)
		}
	}

	if services.Suggestions != nil {
		suggestionHandler := handlers.NewSuggestionHandler(services.Suggestions)
		suggestionGroup := apiGroup.Group("/suggestions")
		{
			suggestionGroup.GET("", suggestionHandler.List)
			suggestionGroup.POST("/approve", suggestionHandler.Approve)
			suggestionGroup.POST("/reject", suggestionHandler.Reject)
			suggestionGroup.GET("/recall_groups", suggestionHandler.RecallGroups)
			suggestionGroup.GET("/reason_summary", suggestionHandler.ReasonSummary)
		}
	}

	if services.Engine != nil {
		engineHandler := handlers.NewEngineHandler(services.Engine, services.Exporter)
		engineGroup := apiGroup.Group("/engine")
		{
			engineGroup.POST("/allocation", engineHandler.RunAllocation)
			engineGroup.POST("/rebalance", engineHandler.RunRebalance)
			engineGroup.POST("/recalc_tiers", engineHandler.RecalcTiers)
		}
		runGroup := apiGroup.Group("/runs")
		{
			runGroup.GET("", engineHandler.ListRuns)
			runGroup.GET("/:id", engineHandler.GetRun)
			runGroup.POST("/:id/export", engineHandler.ExportManifest)
		}
	}

	if services.Metrics != nil {
		metricsHandler := handlers.NewMetricsHandler(services.Metrics)
		storeGroup := apiGroup.Group("/stores")
		{
			storeGroup.GET("", metricsHandler.ListStores)
			storeGroup.GET("/metrics", metricsHandler.ListMetrics)
			storeGroup.GET("/dashboard", metricsHandler.Dashboard)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
