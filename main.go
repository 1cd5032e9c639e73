package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/config"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/handlers"
	"github.com/SAP-F-2025/assignment-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/assignment-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/assignment-service/internal/services"
	"github.com/SAP-F-2025/assignment-service/internal/storage"
	"github.com/SAP-F-2025/assignment-service/internal/utils"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
	"github.com/SAP-F-2025/assignment-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Drafts and bulk import sessions live in Redis, so it is always needed.
	var redisClient *redis.Client
	stopEmbeddedRedis := func() {}
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
	} else {
		if cfg.IsProduction() {
			log.Fatalf("REDIS_URL is required in production")
		}
		redisClient, stopEmbeddedRedis, err = pkg.NewEmbeddedRedis()
		if err != nil {
			log.Fatalf("Failed to start embedded Redis: %v", err)
		}
		logger.Warn("REDIS_URL not set, using embedded Redis; drafts are lost on restart")
	}
	cacheManager := cache.NewCacheManager(redisClient)

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	casdoorClient := casdoor.NewClient(cfg.Casdoor)
	directory := casdoor.NewUserDirectory(casdoorClient, cacheManager.Directory)

	// Event publisher
	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
		publisher = kafkaPublisher
	} else {
		publisher, _ = events.NewGoChannelPublisher(slogLogger)
		logger.Info("KAFKA_BROKERS not set, events stay in process")
	}

	// Attachment storage
	var files storage.FileStore
	if cfg.Minio.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := storage.NewMinioStore(ctx, cfg.Minio)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		files = minioStore
	} else if !cfg.IsProduction() {
		files = storage.NewMemoryStore(fmt.Sprintf("http://localhost:%s/files", cfg.Port))
		logger.Warn("MINIO_ENDPOINT not set, attachments are kept in memory")
	} else {
		logger.Warn("MINIO_ENDPOINT not set, attachment upload is disabled")
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repoManager.GetRepository(),
		Directory: directory,
		Cache:     cacheManager,
		Publisher: publisher,
		Files:     files,
		Logger:    slogLogger,
		Validator: validator.New(),
	}, services.ServiceManagerConfig{
		DraftTTL: cfg.DraftTTL,
		StatsTTL: cfg.StatsTTL,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	metrics := handlers.NewMetrics()
	handlers.SetupMiddleware(router, logger, handlers.MiddlewareConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		Metrics:        metrics,
	})

	handlerManager := handlers.NewHandlerManager(serviceManager, casdoorClient, logger, metrics)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to close database: %v", err)
	}

	if cfg.RedisURL != "" {
		redisClient.Close()
	}
	stopEmbeddedRedis()

	logger.Info("Server exited")
}
