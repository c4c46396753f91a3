package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/application/service"
	"github.com/sousbill/sousbill/internal/config"
	"github.com/sousbill/sousbill/internal/infrastructure/external/gemini"
	"github.com/sousbill/sousbill/internal/infrastructure/external/openai"
	"github.com/sousbill/sousbill/internal/infrastructure/external/resend"
	"github.com/sousbill/sousbill/internal/infrastructure/persistence/repository"
	"github.com/sousbill/sousbill/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/sousbill/sousbill/internal/interfaces/http"
	"github.com/sousbill/sousbill/internal/invoice"
	"github.com/sousbill/sousbill/internal/notification"
	"github.com/sousbill/sousbill/internal/storage"
	"github.com/sousbill/sousbill/migrations"
	"github.com/sousbill/sousbill/pkg/database"
	"github.com/sousbill/sousbill/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SousBill invoice service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Create necessary directories
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Fatal("Failed to create database directory", zap.Error(err))
	}
	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		logger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	// Initialize database
	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.Run(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	// Initialize repositories
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	itemRepo := repository.NewItemRepository(db, logger)
	analyticsRepo := repository.NewAnalyticsRepository(db, logger)

	// Initialize the extraction gateway
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var extractor port.InvoiceExtractor
	switch cfg.Extraction.Provider {
	case "gemini":
		extractor, err = gemini.NewExtractor(ctx, cfg.Extraction.APIKey, cfg.Extraction.Model, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Gemini extractor", zap.Error(err))
		}
	case "openai":
		extractor = openai.NewExtractor(cfg.Extraction.APIKey, cfg.Extraction.Model, logger)
	default:
		logger.Fatal("Unknown extraction provider", zap.String("provider", cfg.Extraction.Provider))
	}

	// Initialize notification components
	emailTransport := resend.NewTransport(cfg.Email.ResendAPIKey, cfg.Email.From, logger)
	alertNotifier := notification.NewPriceAlertNotifier(emailTransport, logger)

	// Initialize services
	documentStore := storage.NewLocalDocumentStore(cfg.Storage.UploadDir, logger)
	normalizer := invoice.NewNormalizer(logger)

	extractionService := service.NewExtractionService(extractor, normalizer, documentStore, logger)
	ingestService := service.NewIngestService(invoiceRepo, itemRepo, db, alertNotifier, logger)
	historyService := service.NewHistoryService(invoiceRepo, itemRepo, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, logger)

	// Initialize HTTP server
	serverConfig := httpserver.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.JWTSecret = cfg.Auth.JWTSecret

	server := httpserver.NewServer(
		serverConfig,
		extractionService,
		ingestService,
		historyService,
		analyticsService,
		logger,
	)

	// Start serves until the signal context is cancelled, then shuts
	// down gracefully.
	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
