package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentos/docs/swagger"
	"contentos/internal/api"
	"contentos/internal/config"
	"contentos/internal/db"
	"contentos/internal/tasks"
	"contentos/internal/utils/crypto"
	"contentos/internal/utils/logger"

	"github.com/joho/godotenv"
)

// 🚀 API entrypoint
// @title ContentOS API
// @version 1.0
// @description Multi-tenant content generation platform
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logger := logger.New("contentos-api")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the secretbox key for BYOK storage
	if err := crypto.InitializeKeys(cfg.Crypto.SecretKey); err != nil {
		log.Fatalf("Failed to initialize keys: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	// Producer-side task client
	taskClient := tasks.NewTaskClient(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Warn("Failed to close task client: %v", err)
		}
	}()

	// Initialize API server
	apiServer := api.NewServer(cfg, dbInstance, taskClient)
	if apiServer == nil {
		log.Fatalf("Failed to initialize API server")
	}
	go func() {
		// Swagger documentation
		swagger.SwaggerInfo.Title = "ContentOS API Documentation"
		swagger.SwaggerInfo.Description = "API documentation for the ContentOS platform"
		swagger.SwaggerInfo.Version = "1.0"
		swagger.SwaggerInfo.Host = cfg.Server.PublicURL
		swagger.SwaggerInfo.Schemes = []string{"https", "http"}

		logger.Success("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("API server shutdown gracefully")
}
