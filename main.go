package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/neptou/go-travel-assistant/app/db"
	appLogger "github.com/neptou/go-travel-assistant/app/logger"
	"github.com/neptou/go-travel-assistant/app/observability/metrics"
	"github.com/neptou/go-travel-assistant/app/tracer"
	"github.com/neptou/go-travel-assistant/internal/api/assistant"
	generativeAI "github.com/neptou/go-travel-assistant/internal/api/generative_ai"
	"github.com/neptou/go-travel-assistant/internal/api/itinerary"
	"github.com/neptou/go-travel-assistant/internal/api/knowledge"
	"github.com/neptou/go-travel-assistant/internal/api/location"
	"github.com/neptou/go-travel-assistant/internal/api/trips"
	api "github.com/neptou/go-travel-assistant/internal/router"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/neptou/go-travel-assistant/config"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations *before* initializing the main pool
	err = database.RunMigrations(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- AI Client & Embeddings ---
	aiClient, err := generativeAI.NewAIClient(ctx)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", slog.Any("error", err))
		os.Exit(1)
	}
	embedder := generativeAI.NewEmbeddingService(aiClient, cfg.Knowledge.EmbeddingModel, logger)

	// --- Knowledge Index ---
	corpusRepo := knowledge.NewFileRepository(
		cfg.Knowledge.PlacesEmbeddingsFile,
		cfg.Knowledge.EmergencyEmbeddingsFile,
		logger,
	)
	index := knowledge.NewIndex(nil)
	searchService := knowledge.NewServiceImpl(index, corpusRepo, embedder, logger)
	if err := searchService.Reload(ctx); err != nil {
		logger.Error("Failed to load knowledge corpus", slog.Any("error", err))
		os.Exit(1)
	}
	if err := index.Snapshot().ValidateDimension(cfg.Knowledge.EmbeddingDimension); err != nil {
		logger.Error("Knowledge corpus does not match the configured embedding model", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Place Catalog & Resolver ---
	catalog, err := location.LoadCatalogFile(ctx, cfg.Knowledge.CatalogFile, logger)
	if err != nil {
		logger.Error("Failed to load place catalog", slog.Any("error", err))
		os.Exit(1)
	}
	resolver := location.NewResolver(catalog, searchService, cfg.Itinerary.ResolverMinScore, logger)

	// --- Services & Handlers ---
	itineraryService := itinerary.NewServiceImpl(resolver, cfg.Itinerary.TransportMode, cfg.Itinerary.DayStartTime, cfg.Itinerary.DefaultDurationMinutes, logger)
	tripsRepo := trips.NewRepository(pool, logger)
	tripsService := trips.NewServiceImpl(tripsRepo, logger)
	assistantService := assistant.NewServiceImpl(searchService, aiClient, logger)

	routerConfig := &api.Config{
		KnowledgeHandler: knowledge.NewHandler(searchService, logger),
		LocationHandler:  location.NewHandler(catalog, resolver, logger),
		ItineraryHandler: itinerary.NewHandler(itineraryService, logger),
		TripsHandler:     trips.NewHandler(tripsService, logger),
		AssistantHandler: assistant.NewHandler(assistantService, logger),
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
