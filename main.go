package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/harmonia-ir/intel-engine/pkg/config"
	"github.com/harmonia-ir/intel-engine/pkg/database"
	"github.com/harmonia-ir/intel-engine/pkg/feeds"
	"github.com/harmonia-ir/intel-engine/pkg/handlers"
	"github.com/harmonia-ir/intel-engine/pkg/llm"
	"github.com/harmonia-ir/intel-engine/pkg/logging"
	"github.com/harmonia-ir/intel-engine/pkg/middleware"
	"github.com/harmonia-ir/intel-engine/pkg/repositories"
	"github.com/harmonia-ir/intel-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ingest_schedule", cfg.Ingest.Schedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories
	indicatorRepo := repositories.NewIndicatorRepository(db)
	userQueryRepo := repositories.NewUserQueryRepository(db)
	exportRepo := repositories.NewExportRepository(db)
	updateRepo := repositories.NewDataUpdateRepository(db)

	// Feed catalog and insight provider
	catalog, err := feeds.LoadCatalog(cfg.Ingest.CatalogPath)
	if err != nil {
		logger.Fatal("Failed to load feed catalog", zap.Error(err))
	}

	var insightClient llm.InsightClient
	if cfg.AI.IsAvailable() {
		insightClient, err = llm.NewInsightClient(&llm.ProviderConfig{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			Endpoint: cfg.AI.Endpoint,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create insight client", zap.Error(err))
		}
	} else {
		logger.Warn("no AI provider configured; insights disabled")
	}

	// Services
	indicatorSvc := services.NewIndicatorService(indicatorRepo, logger)
	dashboardSvc := services.NewDashboardService(indicatorRepo, cfg.Ingest.DefaultSources, logger)
	analyticsSvc := services.NewAnalyticsService(indicatorRepo, logger)
	exportSvc := services.NewExportService(indicatorRepo, exportRepo, cfg.ExportDir, logger)
	insightSvc := services.NewInsightService(indicatorRepo, userQueryRepo, insightClient, logger)
	ingestSvc := services.NewIngestService(indicatorRepo, updateRepo, catalog.Fetchers(logger), logger)

	// Scheduled feed refresh
	if cfg.Ingest.Schedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Ingest.Schedule, func() {
			if _, err := ingestSvc.Run(ctx, services.ModeReplace); err != nil {
				logger.Error("scheduled ingestion failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("Invalid ingest schedule", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Handlers
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewIndicatorHandler(indicatorSvc, logger).RegisterRoutes(mux)
	handlers.NewDashboardHandler(dashboardSvc, logger).RegisterRoutes(mux)
	handlers.NewAnalyticsHandler(analyticsSvc, logger).RegisterRoutes(mux)
	handlers.NewInsightHandler(insightSvc, logger).RegisterRoutes(mux)
	handlers.NewExportHandler(exportSvc, logger).RegisterRoutes(mux)
	handlers.NewIngestHandler(ingestSvc, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger)(mux),
	}

	go func() {
		logger.Info("starting intel-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	return database.RunMigrations(sqlDB, logger)
}
