package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/export"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/jobs"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/core/upload"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/handlers"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/repositories"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/services"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/config"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/database"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/ocr-api/cmd/api/docs"
)

const maxUploadSize = 20 * 1024 * 1024

// @title OCR API
// @version 1.0
// @description Image OCR with Tesseract: word boxes, full text, and stored results
// @contact.name API Support
// @license.name MIT
// @host localhost:8000
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting ocr-api")

	// Init database
	db, err := database.NewDB(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to database")
	}
	defer db.Close()

	// Init repositories (use GORM instance)
	resultRepo := repositories.NewOCRResultRepo(db.GORM)
	orphanRepo := repositories.NewOrphanRepo(db.GORM)

	// Init OCR engine
	engine, err := ocr.NewEngine(cfg.OCREngine, ocr.EngineOptions{
		Command:        cfg.TesseractCmd,
		TessdataPrefix: cfg.TessdataPrefix,
	})
	if err != nil {
		log.Fatal().Err(err).Strs("available", ocr.EngineNames()).Msg("❌ Failed to initialize OCR engine")
	}
	recognizer := ocr.NewService(engine, ocr.ServiceOptions{
		MaxConcurrency: cfg.OCRMaxConcurrency,
		Timeout:        cfg.OCRTimeout,
	})

	// Init object store
	provider, err := newStorageProvider(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.StorageProvider).Msg("❌ Failed to initialize object store")
	}
	var objectStore services.ObjectStore
	storageName := "none"
	if provider != nil {
		store := upload.NewService(provider, cfg.StorageFolder)
		objectStore = store
		storageName = store.GetProviderName()
	}

	// Init deferred persistence
	jobService := jobs.NewService(jobs.WorkerConfig{
		Concurrency: cfg.PersistWorkers,
		QueueSize:   cfg.PersistQueueSize,
		Timeout:     cfg.PersistJobTimeout,
		MaxRetries:  cfg.PersistMaxRetries,
	})
	persistenceService := services.NewPersistenceService(resultRepo, orphanRepo, objectStore, jobService, cfg.StoreImages)
	jobService.RegisterHandlers(persistenceService.JobHandler())
	if err := jobService.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start job worker")
	}

	// Init services
	ocrService := services.NewOCRService(recognizer, ocr.NewRegistry(cfg.OCRTargetHeight), persistenceService, services.OCRServiceOptions{
		MinConfidence:  cfg.OCRMinConfidence,
		TessdataPrefix: cfg.TessdataPrefix,
	})

	janitor := services.NewOrphanJanitor(orphanRepo, objectStore, cfg.OrphanMaxAttempts)
	if objectStore != nil {
		if err := janitor.Start(cfg.OrphanSweepSchedule); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to start orphan janitor")
		}
	}

	// Log provider info
	log.Info().Msgf("🔍 Using OCR engine: %s", ocrService.EngineName())
	log.Info().Msgf("💾 Using object store: %s (store images: %t)", storageName, cfg.StoreImages)

	// Init handlers
	exportService := services.NewExportService(persistenceService, export.NewService())
	ocrHandler := handlers.NewOCRHandler(ocrService, persistenceService, exportService)
	healthHandler := handlers.NewHealthHandler(db, jobService, ocrService.EngineName(), storageName)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "OCR API",
		BodyLimit: maxUploadSize,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	// Locally stored images
	if local, ok := provider.(*upload.LocalProvider); ok {
		app.Static(strings.TrimSuffix(local.PublicPath(), "/"), local.BasePath())
	}

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app, ocrHandler, healthHandler)

	// Start server
	go func() {
		log.Info().Msgf("✅ ocr-api running at :%s", cfg.Port)
		log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("❌ Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("⚠️ Server shutdown error")
	}
	jobService.Stop()
	persistenceService.Wait()
	if objectStore != nil {
		janitor.Stop()
	}
	log.Info().Msg("✅ Shutdown complete")
}

// newStorageProvider builds the configured provider; nil means no storage
func newStorageProvider(ctx context.Context, cfg *config.Config) (upload.Provider, error) {
	switch cfg.StorageProvider {
	case "none", "":
		return nil, nil
	case "local":
		return upload.NewLocalProvider(cfg.UploadPath, cfg.BaseURL)
	case "s3":
		return upload.NewS3Provider(ctx, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSRegion, cfg.AWSS3Bucket, cfg.AWSS3BaseURL)
	case "cloudinary":
		return upload.NewCloudinaryProvider(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	default:
		return nil, fmt.Errorf("unknown storage provider %q (use: local, s3, cloudinary, none)", cfg.StorageProvider)
	}
}

func corsConfig(origins []string) cors.Config {
	allowOrigins := strings.Join(origins, ",")
	return cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,HEAD,OPTIONS",
		AllowCredentials: allowOrigins != "*",
	}
}
