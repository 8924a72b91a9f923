// Command server runs the juvem registration and management API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/di"
	"github.com/theoboldt/juvem-sub001/internal/handler"
	"github.com/theoboldt/juvem-sub001/internal/pdf"
	"github.com/theoboldt/juvem-sub001/pkg/blob"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/middleware"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
		OutputPath:  "stdout",
		OTLPLogsURL: cfg.OTel.LogsURL,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", zap.Error(err))
	}
	log := logger.Get()
	defer func() { _ = log.Close() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	repos, db, err := di.OpenRepositories(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open repositories", zap.Error(err))
	}
	redisClient, err := di.OpenRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	publisher, err := di.OpenPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		log.Fatal("Failed to connect to kafka", zap.Error(err))
	}
	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		log.Fatal("Failed to open document store", zap.Error(err))
	}

	container, err := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Repos:     repos,
		Publisher: publisher,
		Store:     store,
		Converter: pdf.New(cfg.PDF.ConverterURL, cfg.PDF.Timeout),
		Logger:    log,
		App:       cfg.App,
		Invoice:   cfg.Invoice,
	})
	if err != nil {
		log.Fatal("Failed to build container", zap.Error(err))
	}
	defer container.Close()

	limiterCfg := middleware.RateLimitConfig{
		Limit:     cfg.RateLimit.RegistrationsPerMinute,
		Window:    time.Minute,
		KeyPrefix: cfg.RateLimit.KeyPrefix,
	}
	var limiter middleware.Limiter = middleware.NewLocalRateLimiter(limiterCfg)
	if redisClient != nil {
		redisLimiter, err := middleware.NewRedisRateLimiter(ctx, redisClient, limiterCfg)
		if err != nil {
			log.Warn("Falling back to local rate limiter", zap.Error(err))
		} else {
			limiter = redisLimiter
		}
	}

	var audit *middleware.AuditLogger
	if db != nil {
		auditCfg := middleware.DefaultAuditConfig(middleware.NewPostgresAuditSink(db.Pool()))
		auditCfg.Logger = log
		audit = middleware.NewAuditLogger(auditCfg)
		defer func() { _ = audit.Close() }()
	}

	router := handler.NewRouter(container.Handlers, handler.RouterConfig{
		JWT: &middleware.JWTConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		},
		AllowedOrigins:      cfg.Server.AllowedOrigins,
		Logger:              log,
		RegistrationLimiter: limiter,
		RegistrationLimit:   limiterCfg,
		Audit:               audit,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("blob_driver", string(store.Driver())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}
	log.Info("Server exited")
}
