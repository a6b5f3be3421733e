// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/salesight/backend-go/internal/api/handlers"
	"github.com/salesight/backend-go/internal/api/middleware"
	"github.com/salesight/backend-go/internal/service"
)

type Services struct {
	Analytics *service.AnalyticsService
	Datasets  *service.DatasetRegistry
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
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

	if services != nil && services.Analytics != nil && services.Datasets != nil {
		handler := handlers.NewAnalyticsHandler(services.Analytics, services.Datasets)

		datasets := apiGroup.Group("/datasets")
		{
			datasets.POST("/upload", handler.UploadDataset)
			datasets.GET("", handler.ListDatasets)
			datasets.DELETE("/:id", handler.DeleteDataset)

			analyticsGroup := datasets.Group("/:id/analytics")
			{
				analyticsGroup.GET("/dashboard", handler.GetDashboard)
				analyticsGroup.GET("/rfm", handler.GetRFM)
				analyticsGroup.GET("/time_series", handler.GetTimeSeries)
				analyticsGroup.GET("/forecast", handler.GetForecast)
				analyticsGroup.GET("/inventory", handler.GetInventory)
				analyticsGroup.GET("/categories", handler.GetCategories)
				analyticsGroup.GET("/report", handler.GetReport)
			}
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
