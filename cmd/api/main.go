package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pantau-go-api/internal/config"
	"github.com/noah-isme/pantau-go-api/internal/database"
	"github.com/noah-isme/pantau-go-api/internal/handler"
	"github.com/noah-isme/pantau-go-api/internal/middleware"
	"github.com/noah-isme/pantau-go-api/internal/models"
	"github.com/noah-isme/pantau-go-api/internal/repository"
	"github.com/noah-isme/pantau-go-api/internal/router"
	"github.com/noah-isme/pantau-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Snapshot{}, &models.RawRecord{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; the service degrades to uncached reads
	// and dropped events when they are not configured.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NatsURL != "" {
		natsConn, err = nats.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	snapshotRepo := repository.NewSnapshotRepository(db)
	if err := service.NormalizeLegacyData(context.Background(), snapshotRepo, logger); err != nil {
		log.Fatalf("failed to normalize legacy rows: %v", err)
	}

	events := service.NewSnapshotEvents(natsConn, "", logger)
	snapshotService := service.NewSnapshotService(snapshotRepo, events, cfg.MaxUploadMB, logger)
	analyticsService := service.NewAnalyticsService(snapshotRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	exportService := service.NewExportService(analyticsService, logger)

	snapshotHandler := handler.NewSnapshotHandler(snapshotService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	exportHandler := handler.NewExportHandler(exportService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SnapshotHandler:  snapshotHandler,
		AnalyticsHandler: analyticsHandler,
		ExportHandler:    exportHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
