package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/twoechelon/alns-solver/internal/common/cache"
	"github.com/twoechelon/alns-solver/internal/common/config"
	"github.com/twoechelon/alns-solver/internal/common/database"
	"github.com/twoechelon/alns-solver/internal/common/health"
	"github.com/twoechelon/alns-solver/internal/common/logging"
	"github.com/twoechelon/alns-solver/internal/common/middleware"
	"github.com/twoechelon/alns-solver/internal/routing"
)

// @title Two-Echelon CVRP Solver API
// @version 1.0
// @description ALNS-based solver for the two-echelon capacitated vehicle routing problem
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @tag.name routing
// @tag.description Route optimization endpoints
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	loggerConfig := &logging.LoggerConfig{
		Level:      logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Format:     "json",
		Output:     os.Stdout,
		AddSource:  true,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	logger := logging.NewLogger(loggerConfig)
	logging.InitDefaultLogger(loggerConfig)

	logger.Info("Starting 2E-CVRP solver API",
		"version", "1.0.0",
		"environment", cfg.Environment,
	)

	logger.Info("Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)
	logger.Info("Database connected successfully")

	sqlDB, _ := db.DB()
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connected successfully")

	healthChecker := health.NewHealthChecker(db, redisClient, "2E-CVRP Solver API", "1.0.0")
	healthHandler := health.NewHandler(healthChecker)
	metricsHandler := health.NewMetricsHandler(healthChecker)
	logger.Info("Health check system initialized")

	routingRepo := routing.NewRepository(db)
	routingCache := cache.NewRedisCache(redisClient, "alns")
	routingService := routing.NewService(routingRepo, routingCache, logger)
	routingHandler := routing.NewHandler(routingService)
	runResponseCache := middleware.NewCacheMiddleware(redisClient, "alns-http")

	r := gin.New()

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	logger.Info("Response compression enabled (gzip)")

	r.Use(logging.RequestLoggingMiddleware(logger))
	r.Use(logging.PerformanceLoggingMiddleware(logger, 1*time.Second))
	r.Use(logging.ErrorLoggingMiddleware(logger))
	r.Use(logging.RecoveryLoggingMiddleware(logger))
	logger.Info("Logging middleware initialized")

	// RecoveryHandler/ErrorHandler turn a panic or an AbortWith* error
	// into the solver API's standardized JSON response; the logging
	// middleware above only logs, it never writes a response body.
	r.Use(middleware.RecoveryHandler(logger))
	r.Use(middleware.ErrorHandler(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.SecurityHeaders())

	apiVersionConfig := middleware.DefaultAPIVersionConfig()
	r.Use(middleware.APIVersionMiddleware(apiVersionConfig))
	logger.Info("API versioning headers enabled", "version", apiVersionConfig.Version)

	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	logger.Info("Rate limiting enabled", "requests_per_minute", cfg.RateLimitPerMinute)

	setupRoutes(r, routingHandler, runResponseCache)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	health.SetupHealthRoutes(r, healthHandler)
	health.SetupMetricsRoutes(r, metricsHandler)
	logger.Info("Health check endpoints configured")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("solver API starting",
			"port", cfg.Port,
			"health_check", "http://localhost:"+cfg.Port+"/health",
			"api_docs", "http://localhost:"+cfg.Port+"/swagger/index.html",
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Warn("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited gracefully")
}

func setupRoutes(r *gin.Engine, routingHandler *routing.Handler, runResponseCache *middleware.CacheMiddleware) {
	v1 := r.Group("/api/v1")
	routing.SetupRoutes(v1, routingHandler, runResponseCache)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
