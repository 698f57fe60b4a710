package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/backoffice/internal/application/document"
	settingapp "github.com/erp/backoffice/internal/application/setting"
	"github.com/erp/backoffice/internal/domain/numbering"
	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/persistence/mongostore"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/erp/backoffice/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// storage is the opened settings backend
type storage struct {
	repo  setting.Repository
	ping  func(ctx context.Context) error
	close func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	if providers.Logs != nil {
		log = providers.Logs.Bridge(log, cfg.App.Name, zapcore.InfoLevel)
	}

	log.Info("Starting settings service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("driver", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Backend),
	)

	store, err := openStorage(ctx, cfg, providers, log)
	if err != nil {
		log.Fatal("Failed to open settings storage", zap.Error(err))
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Warn("Failed to close settings storage", zap.Error(err))
		}
	}()

	repo, err := telemetry.NewInstrumentedSettingRepository(store.repo, providers.TracerProvider(), providers.MeterProvider())
	if err != nil {
		log.Fatal("Failed to instrument settings repository", zap.Error(err))
	}

	snapshotCache, closeCache, err := cache.NewSnapshotCacheFactory(cfg, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create snapshot cache", zap.Error(err))
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Warn("Failed to close snapshot cache", zap.Error(err))
		}
	}()

	settingService := settingapp.NewService(repo, snapshotCache, log)
	counter := settingapp.NewCounter(repo, snapshotCache, log)
	provider := settingapp.NewProvider(settingService, snapshotCache, log)
	numberingService := document.NewNumberingService(counter, numbering.New(), cfg.Numbering.Length, log)

	if cfg.Settings.SeedDefaults {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		created, err := settingService.SeedDefaults(seedCtx)
		cancel()
		if err != nil {
			log.Fatal("Failed to seed default settings", zap.Error(err))
		}
		log.Info("Default settings seeded", zap.Int("created", created))
	}

	engine, err := newEngine(cfg, providers, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}
	routes := router.Mount(engine, router.Handlers{
		Settings:  handler.NewSettingHandler(settingService, counter, provider),
		Documents: handler.NewDocumentHandler(numberingService, provider),
		System:    handler.NewSystemHandler(cfg.App.Name, version, store.ping),
	})
	for _, rt := range routes {
		log.Debug("Route mounted",
			zap.String("group", rt.Group),
			zap.String("method", rt.Method),
			zap.String("path", rt.Path))
	}
	log.Info("HTTP routes mounted", zap.Int("count", len(routes)))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openStorage connects the configured settings backend and brings its schema
// up to date
func openStorage(ctx context.Context, cfg *config.Config, providers *telemetry.Providers, log *zap.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		repo := mongostore.NewSettingRepository(client.Database(cfg.Mongo.Database))
		if err := repo.Migrate(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		return &storage{
			repo:  repo,
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func() error { return client.Disconnect(context.Background()) },
		}, nil
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		err = migrateUp(cfg, log)
	default:
		err = db.AutoMigrate()
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.Telemetry.TraceSQL {
		if err := telemetry.RegisterGormTracing(db.DB, providers.TracerProvider(), cfg.Database.Driver, false); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	log.Info("Connected to database", zap.String("driver", db.Driver))
	return &storage{
		repo:  persistence.NewGormSettingRepository(db.DB),
		ping:  db.PingContext,
		close: db.Close,
	}, nil
}

// migrateUp applies the embedded migrations over a dedicated connection so
// closing the migrator leaves the application pool untouched
func migrateUp(cfg *config.Config, log *zap.Logger) error {
	m, err := migration.NewFromURL(cfg.Database.DSN(), migrations.FS, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

func newEngine(cfg *config.Config, providers *telemetry.Providers, log *zap.Logger) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	httpMetrics, err := middleware.HTTPMetrics(providers.MeterProvider())
	if err != nil {
		return nil, err
	}

	engine.Use(
		logger.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.App.Name,
			TracerProvider: providers.TracerProvider(),
			SkipPaths:      []string{"/health"},
		}),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		httpMetrics,
		middleware.Secure(cfg.App.Env == "production"),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	return engine, nil
}
