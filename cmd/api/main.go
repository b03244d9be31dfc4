package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contractapi/docs"
	"contractapi/internal/config"
	"contractapi/internal/database"
	"contractapi/internal/database/migration"
	handlers "contractapi/internal/http/handler"
	"contractapi/internal/http/middleware"
	"contractapi/internal/llm"
	"contractapi/internal/logging"
	"contractapi/internal/metrics"
	appotel "contractapi/internal/otel"
	"contractapi/internal/repository"
	"contractapi/internal/repository/postgres"
	"contractapi/internal/retry"
	"contractapi/internal/service"
	"contractapi/internal/storage"
	"contractapi/internal/textextract"
)

// Multipart framing on top of the file itself.
const bodyHeadroom = 1 << 20

// @title Contract Extraction API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			log.Fatalf("failed to load config file: %v", err)
		}
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Location())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("config.invalid", zap.String("field", e.Field), zap.String("message", e.Message))
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// History is optional; without a database the pipeline still answers requests
	var repo repository.ExtractionRepository = repository.Noop{}
	db, err := openHistory(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
		repo = postgres.NewExtractionPostgres(db)
	}

	// S3-compatible object storage for the uploaded contracts
	var objStore storage.Storage
	var artifacts service.Artifacts
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			logger.Fatal("failed to initialize object storage", zap.Error(err))
		}
		artifacts = storage.NewArtifactStore(objStore, cfg.Pipeline.PresignExpiry)
	} else {
		logger.Warn("storage.disabled")
	}

	model, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to initialize model client", zap.Error(err))
	}

	pipelineMetrics, err := metrics.NewPipeline(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register pipeline metrics", zap.Error(err))
	}

	svc := service.NewContractService(service.Options{
		Artifacts: artifacts,
		Extractor: textextract.NewPdftotext(cfg.TextExtract, logger),
		Model:     model,
		Retrier: retry.New(retry.Policy{
			MaxAttempts: cfg.Pipeline.MaxAttempts,
			BaseDelay:   cfg.Pipeline.BaseDelay,
			MaxJitter:   cfg.Pipeline.MaxJitter,
			Retryable:   llm.IsRetryable,
		}),
		Repo:    repo,
		Metrics: pipelineMetrics,
		Logger:  logger,
		Timeout: cfg.Pipeline.Timeout,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Pipeline.MaxUploadBytes) + bodyHeadroom,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))

	prom, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register http metrics", zap.Error(err))
	}
	app.Use(prom.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, objStore, svc, cfg.Pipeline.MaxUploadBytes)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info("server.shutdown")
		if err := app.ShutdownWithTimeout(cfg.Pipeline.Timeout); err != nil {
			logger.Error("server.shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server.start", zap.String("addr", addr), zap.String("llm_provider", cfg.LLM.Provider))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// openHistory connects and migrates the history database. It returns a nil
// handle when no database host is configured.
func openHistory(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*sql.DB, error) {
	if !cfg.Database.Enabled() {
		logger.Warn("database.disabled")
		return nil, nil
	}

	db, err := database.NewPostgres(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
