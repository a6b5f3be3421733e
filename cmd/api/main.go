// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salesight/backend-go/internal/api"
	"github.com/salesight/backend-go/internal/cache"
	"github.com/salesight/backend-go/internal/config"
	"github.com/salesight/backend-go/internal/service"
	"github.com/salesight/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the result cache; a Redis failure downgrades to noop rather
	// than blocking startup.
	resultCache, err := cache.NewResultCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("result cache unavailable, continuing without caching")
		resultCache = cache.NewNoopResultCache()
	}

	// Initialize services
	analyticsService := service.NewAnalyticsService(cfg.Analytics, resultCache)
	registry := service.NewDatasetRegistry()

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Analytics: analyticsService,
		Datasets:  registry,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
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
