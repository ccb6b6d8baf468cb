package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/foxxcyber/shopsmart/internal/app"
	"github.com/foxxcyber/shopsmart/internal/config"
	"github.com/foxxcyber/shopsmart/internal/handlers"
	"github.com/foxxcyber/shopsmart/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()
	log := app.NewLogger(cfg)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database and run migrations
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	list := services.NewShoppingListService(store, log)

	// Bring the stored list in line with the current diet plans
	if _, err := list.Recompute(ctx); err != nil {
		log.Warn("initial recompute failed", "error", err)
	}

	// Vertex AI suggestions are optional
	var suggester services.Suggester
	if cfg.SuggestionsEnabled() {
		vertex, err := services.NewVertexSuggester(ctx, services.VertexConfig{
			ProjectID:       cfg.GoogleProjectID,
			Location:        cfg.GoogleLocation,
			CredentialsFile: cfg.GoogleCredentialsFile,
			Model:           cfg.SuggestionModel,
		})
		if err != nil {
			log.Warn("suggestions disabled: failed to create Vertex AI client", "error", err)
		} else {
			defer vertex.Close()
			suggester = vertex
			log.Info("suggestions enabled", "model", cfg.SuggestionModel, "location", cfg.GoogleLocation)
		}
	} else {
		log.Info("suggestions disabled: GOOGLE_PROJECT_ID not set")
	}
	suggestions := services.NewSuggestionService(store, suggester, cfg.SuggestionTimeout, log)

	// S3 export is optional
	var objects services.ObjectStore
	if cfg.S3Enabled {
		if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			log.Warn("export disabled: S3 credentials not configured")
		} else {
			storage, err := services.NewStorageService(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
			if err != nil {
				log.Warn("export disabled: failed to initialize storage service", "error", err)
			} else {
				if err := storage.EnsureBucket(ctx); err != nil {
					log.Warn("failed to ensure S3 bucket exists", "bucket", cfg.S3Bucket, "error", err)
				}
				objects = storage
				log.Info("export enabled", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
			}
		}
	}
	exports := services.NewExportService(list, objects, cfg.ExportURLExpiry, cfg.ExportRetention, log)

	// Initialize Fiber app
	server := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
		UnescapePath:          true,
	})

	// Global middleware
	server.Use(recover.New())
	server.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	handlers.New(list, suggestions, exports, log).Routes(server.Group("/api"))

	// Shut down cleanly on interrupt so deferred closes run
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
	}
}
