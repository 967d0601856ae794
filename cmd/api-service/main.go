package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/speaklab/retell-be/internal/api/handler"
	"github.com/speaklab/retell-be/internal/api/router"
	"github.com/speaklab/retell-be/internal/api/storage"
	"github.com/speaklab/retell-be/internal/asr"
	"github.com/speaklab/retell-be/internal/asr/assemblyai"
	"github.com/speaklab/retell-be/internal/config"
	"github.com/speaklab/retell-be/internal/evaluation"
	"github.com/speaklab/retell-be/internal/llm"
	"github.com/speaklab/retell-be/internal/llm/gemini"
	"github.com/speaklab/retell-be/shared/logger"
	sqliteclient "github.com/speaklab/retell-be/shared/sqlite"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize SQLite client
	dbClient, err := initSQLite(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database ready", slog.String("path", cfg.Database.Path))

	store := storage.NewStorage(dbClient)

	// Audio staging directory for uploads in flight
	if err := os.MkdirAll(cfg.Evaluation.TempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	// Provider clients stay nil when their API keys are missing; evaluations
	// then fail fast with a configuration error instead of a network error.
	transcriber := initTranscriber(&cfg.ASR, appLogger.Logger)
	generator := initGenerator(&cfg.LLM, appLogger.Logger)
	if transcriber == nil || generator == nil {
		appLogger.Warn("Provider API keys missing, evaluations will fail until configured",
			slog.Bool("asr_configured", transcriber != nil),
			slog.Bool("llm_configured", generator != nil),
		)
	}

	processor := evaluation.NewProcessor(&evaluation.ProcessorConfig{
		Store:       store,
		Transcriber: transcriber,
		Generator:   generator,
		Logger:      appLogger.Logger,
		CardTimeout: cfg.Evaluation.CardTimeout,
	})

	pool := evaluation.NewPool(processor, cfg.Evaluation.Concurrency, cfg.Evaluation.QueueSize, appLogger.Logger)
	pool.Start()

	appLogger.Info("Evaluation pool started",
		slog.Int("concurrency", cfg.Evaluation.Concurrency),
		slog.Int("queue_size", cfg.Evaluation.QueueSize),
	)

	summarizer := evaluation.NewSummarizer(&evaluation.SummarizerConfig{
		Store:          store,
		Generator:      generator,
		Logger:         appLogger.Logger,
		SummaryTimeout: cfg.Evaluation.SummaryTimeout,
	})

	// Initialize router
	r := initRouter(cfg.App.Environment, &handler.Dependencies{
		Logger:     appLogger.Logger,
		Storage:    store,
		Pool:       pool,
		Summarizer: summarizer,
		TempDir:    cfg.Evaluation.TempDir,
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
	}

	// Drain queued evaluations, then release the database
	pool.Stop()
	if err := dbClient.Close(); err != nil {
		appLogger.Error("Failed to close database", slog.Any("error", err))
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initSQLite initializes the embedded SQLite database client
func initSQLite(cfg *config.DatabaseConfig, logger *slog.Logger) (*sqliteclient.Client, error) {
	dbConfig := &sqliteclient.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}

	return sqliteclient.NewClient(dbConfig, logger)
}

// initTranscriber builds the AssemblyAI client, or nil without an API key
func initTranscriber(cfg *config.ASRConfig, logger *slog.Logger) asr.Transcriber {
	if cfg.APIKey == "" {
		return nil
	}

	return assemblyai.NewClient(assemblyai.Config{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		PollInterval: cfg.PollInterval,
	}, logger)
}

// initGenerator builds the Gemini client, or nil without an API key
func initGenerator(cfg *config.LLMConfig, logger *slog.Logger) llm.Generator {
	if cfg.APIKey == "" {
		return nil
	}

	return gemini.NewClient(gemini.Config{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	}, logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, deps *handler.Dependencies) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps)
}
