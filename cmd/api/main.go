package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"docrepo/internal/config"
	"docrepo/internal/database"
	"docrepo/internal/database/migration"
	handlers "docrepo/internal/http/handler"
	"docrepo/internal/http/middleware"
	"docrepo/internal/logging"
	"docrepo/internal/otel"
	"docrepo/internal/repository"
	"docrepo/internal/repository/docstore"
	"docrepo/internal/repository/sqldb"
	"docrepo/internal/service"
	"docrepo/internal/storage"
)

// @title Document Repository API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	cfg.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithField("error", err.Error()).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *logrus.Logger) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	metaStore, contentStore, err := openCollections(cfg)
	if err != nil {
		return err
	}
	store, err := docstore.Open(ctx, metaStore, contentStore, docstore.WithLogger(log.WithField("component", "docstore")))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	log.WithFields(logrus.Fields{
		"backend": cfg.Storage.Backend,
		"next_id": store.NextID(),
	}).Info("document store ready")

	events, db, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	docSvc := service.NewDocumentService(store, events, log.WithField("component", "service"), service.NewMetrics(reg))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(recover.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(log.WithField("component", "http")))

	handlers.RegisterRoutes(app, docSvc, reg, store, events)

	handlers.RegisterSwagger(app, cfg.AppHost)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func openCollections(cfg *config.AppConfig) (storage.Storage, storage.Storage, error) {
	sc := cfg.Storage
	switch sc.Backend {
	case config.StorageLocal:
		meta, err := storage.NewLocal(sc.MetadataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("metadata collection: %w", err)
		}
		content, err := storage.NewLocal(sc.DocumentsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("content collection: %w", err)
		}
		return meta, content, nil
	case config.StorageMinIO:
		meta, err := storage.NewMinIO(cfg.MinIO, sc.MetadataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("metadata collection: %w", err)
		}
		content, err := storage.NewMinIO(cfg.MinIO, sc.DocumentsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("content collection: %w", err)
		}
		return meta, content, nil
	case config.StorageMemory:
		return storage.NewMemory(), storage.NewMemory(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", sc.Backend)
	}
}

// openJournal returns the event repository. The db is nil when the journal is disabled.
func openJournal(ctx context.Context, cfg *config.AppConfig, log *logrus.Logger) (repository.EventRepository, *sql.DB, error) {
	if !cfg.Journal.Enabled() {
		log.Info("event journal disabled")
		return sqldb.NoopEvents{}, nil, nil
	}

	db, dialect, err := database.Open(cfg.Journal)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	host := cfg.Journal.Database.Host
	if dialect == database.DialectSQLite {
		host = cfg.Journal.SQLitePath
	}
	if err := migration.EnsureMigrated(ctx, db, dialect, log, host); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate journal: %w", err)
	}
	return sqldb.NewEventSQL(db, dialect), db, nil
}
