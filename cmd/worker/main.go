package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"contentos/internal/config"
	"contentos/internal/db"
	"contentos/internal/metrics"
	"contentos/internal/services"
	"contentos/internal/tasks"
	"contentos/internal/utils/crypto"
	"contentos/internal/utils/logger"

	"github.com/joho/godotenv"
)

// 🛠️ Worker entrypoint: queue processors plus the publish-due scheduler.
func main() {
	logger := logger.New("contentos-worker")

	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// BYOK keys and integration credentials are decrypted in processors
	if err := crypto.InitializeKeys(cfg.Crypto.SecretKey); err != nil {
		log.Fatalf("Failed to initialize keys: %v", err)
	}

	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	storage, err := services.NewAssetStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize asset storage: %v", err)
	}

	// The sweep processor re-enqueues publish tasks through this client.
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

	taskHandler := tasks.NewTaskHandler(dbInstance, cfg, storage, taskClient)

	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Worker.Concurrency,
		taskHandler,
		logger,
	)

	// Job counters are incremented worker-side; scrape them here.
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		logger.Info("Metrics listening on %s/metrics", addr)
		if err := metrics.ListenAndServe(addr); err != nil {
			logger.Error("Metrics server error", err)
		}
	}()

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			logger.Error("Task server error", err)
		}
	}()

	taskScheduler, err := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Worker.PublishSweepSpec,
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	taskScheduler.Stop()
	taskServer.Shutdown()

	logger.Info("Worker shutdown gracefully")
}
