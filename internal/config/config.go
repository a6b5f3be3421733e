// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	UploadDir string
	ReportDir string
	LogLevel  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ResultTTLSeconds int
}

// AnalyticsConfig carries the engine defaults. The stock multipliers are fixed
// policy constants, surfaced here so deployments can override them without a
// rebuild.
type AnalyticsConfig struct {
	ForecastHorizonDays  int
	DecompositionPeriod  int
	ShortMovingAvgWindow int
	LongMovingAvgWindow  int
	SafetyStockFactor    float64
	ReorderPointFactor   float64
	HighStockRatio       float64
	MaxAutoregOrder      int
	WeeklySeasonalPeriod int
	ForecastInterval     float64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_REPORT_DIR", "./data/reports")
		viper.SetDefault("APP_LOG_LEVEL", "info")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_RESULT_TTL_SECONDS", 300)
		viper.SetDefault("ANALYTICS_FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("ANALYTICS_DECOMPOSITION_PERIOD", 30)
		viper.SetDefault("ANALYTICS_SHORT_MA_WINDOW", 7)
		viper.SetDefault("ANALYTICS_LONG_MA_WINDOW", 30)
		viper.SetDefault("ANALYTICS_SAFETY_STOCK_FACTOR", 1.5)
		viper.SetDefault("ANALYTICS_REORDER_POINT_FACTOR", 2.0)
		viper.SetDefault("ANALYTICS_HIGH_STOCK_RATIO", 2.0)
		viper.SetDefault("ANALYTICS_MAX_AUTOREG_ORDER", 10)
		viper.SetDefault("ANALYTICS_WEEKLY_SEASONAL_PERIOD", 7)
		viper.SetDefault("ANALYTICS_FORECAST_INTERVAL_Z", 1.96)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure working directories exist
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_REPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
				ReportDir: viper.GetString("APP_REPORT_DIR"),
				LogLevel:  viper.GetString("APP_LOG_LEVEL"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ResultTTLSeconds: viper.GetInt("CACHE_RESULT_TTL_SECONDS"),
			},
			Analytics: AnalyticsConfig{
				ForecastHorizonDays:  viper.GetInt("ANALYTICS_FORECAST_HORIZON_DAYS"),
				DecompositionPeriod:  viper.GetInt("ANALYTICS_DECOMPOSITION_PERIOD"),
				ShortMovingAvgWindow: viper.GetInt("ANALYTICS_SHORT_MA_WINDOW"),
				LongMovingAvgWindow:  viper.GetInt("ANALYTICS_LONG_MA_WINDOW"),
				SafetyStockFactor:    viper.GetFloat64("ANALYTICS_SAFETY_STOCK_FACTOR"),
				ReorderPointFactor:   viper.GetFloat64("ANALYTICS_REORDER_POINT_FACTOR"),
				HighStockRatio:       viper.GetFloat64("ANALYTICS_HIGH_STOCK_RATIO"),
				MaxAutoregOrder:      viper.GetInt("ANALYTICS_MAX_AUTOREG_ORDER"),
				WeeklySeasonalPeriod: viper.GetInt("ANALYTICS_WEEKLY_SEASONAL_PERIOD"),
				ForecastInterval:     viper.GetFloat64("ANALYTICS_FORECAST_INTERVAL_Z"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
