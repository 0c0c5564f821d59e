// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storeops/rebalance/internal/api"
	"github.com/storeops/rebalance/internal/cache"
	"github.com/storeops/rebalance/internal/config"
	"github.com/storeops/rebalance/internal/export"
	"github.com/storeops/rebalance/internal/repository/postgres"
	"github.com/storeops/rebalance/internal/service"
	"github.com/storeops/rebalance/internal/storage"
	"github.com/storeops/rebalance/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	constraintCache, err := cache.NewConstraintCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("constraint cache unavailable, continuing without")
		constraintCache = cache.NewNoopConstraintCache()
	}
	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("dashboard cache unavailable, continuing without")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	constraintRepo := postgres.NewConstraintRepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)
	runRepo := postgres.NewRunRepository(db)
	metricsRepo := postgres.NewStoreMetricsRepository(db)

	constraintService := service.NewConstraintService(constraintRepo, constraintCache)
	suggestionService := service.NewSuggestionService(suggestionRepo, constraintService)
	engineService := service.NewEngineService(
		constraintService, suggestionRepo, runRepo, metricsRepo, dashboardCache,
		cfg.Engine.WarehouseLocation, cfg.Engine.WorkerCount,
	)
	metricsService := service.NewMetricsService(metricsRepo, dashboardCache)

	var exporter *export.ManifestExporter
	if cfg.Export.Enabled {
		objectStore, err := storage.NewS3Client(cfg.Export)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize export storage")
		}
		exporter = export.NewManifestExporter(suggestionRepo, objectStore, cfg.Export.KeyPrefix)
	}

	router := api.NewRouter(&api.Services{
		Constraints: constraintService,
		Suggestions: suggestionService,
		Engine:      engineService,
		Metrics:     metricsService,
		Exporter:    exporter,
	}, cfg.Server.AllowedOrigins, cfg.Server.DefaultTenant)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
