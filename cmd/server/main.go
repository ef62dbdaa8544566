package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/pos/internal/application/orderentry"
	appscan "github.com/erp/pos/internal/application/scan"
	"github.com/erp/pos/internal/domain/cart"
	"github.com/erp/pos/internal/infrastructure/auth"
	infracatalog "github.com/erp/pos/internal/infrastructure/catalog"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/decoder"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/media"
	"github.com/erp/pos/internal/infrastructure/storage"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting POS order entry",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize the durable key-value store
	kvStore, err := storage.NewStoreFromConfig(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize storage backend",
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err))
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			log.Error("Error closing storage backend", zap.Error(err))
		}
	}()
	log.Info("Storage backend ready", zap.String("backend", cfg.Storage.Backend))

	// Cart: loaded from the persisted snapshot, shared by every consumer
	cartRepo := storage.NewCartRepository(kvStore, cfg.Storage.CartKey)
	cartStore := cart.NewStore(ctx, cartRepo, log)

	// Auth token for catalog lookups
	tokenStore := auth.NewTokenStore(kvStore, cfg.Storage.TokenKey)

	// Product resolution against the ERP catalog backend
	resolver := infracatalog.NewHTTPResolver(infracatalog.Config{
		BaseURL:            cfg.Catalog.BaseURL,
		Timeout:            cfg.Catalog.Timeout,
		BreakerMaxFailures: cfg.Catalog.BreakerMaxFailures,
		BreakerTimeout:     cfg.Catalog.BreakerTimeout,
	}, tokenStore, log)

	// Camera host. The directory-backed virtual camera serves registers
	// without camera hardware; a real host would slot in through the
	// same Provider interface.
	frameDir := cfg.Scanner.FrameDir
	if frameDir == "" {
		frameDir = "frames"
	}
	var provider media.Provider = &media.FileProvider{
		Dir:       frameDir,
		FrameRate: cfg.Scanner.FrameRate,
	}
	log.Info("Using directory-backed virtual camera", zap.String("frame_dir", frameDir))

	deviceManager := media.NewManager(provider, media.ManagerConfig{
		IdealWidth:  cfg.Scanner.IdealWidth,
		IdealHeight: cfg.Scanner.IdealHeight,
		FrameRate:   cfg.Scanner.FrameRate,
	}, log)

	// Decode loop over zxing with the configured retry policy
	controller := appscan.NewController(
		decoder.NewZXingDecoder(),
		&appscan.LogFeedback{Logger: log},
		cfg.Scanner.RetryBackoff,
		log,
	)

	orderEntry := orderentry.NewService(
		cartStore,
		resolver,
		deviceManager,
		controller,
		orderentry.Config{MaxRetries: cfg.Scanner.MaxRetries},
		log,
	)
	defer orderEntry.Shutdown()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// tracing, CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewCartHandler(cartStore, log))
	r.Register(handler.NewScannerHandler(orderEntry, log))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
