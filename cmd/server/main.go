package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/config"
	"bendigotelco/connecthub/internal/halo"
	"bendigotelco/connecthub/internal/handler"
	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/repository"
	"bendigotelco/connecthub/internal/secrets"
	"bendigotelco/connecthub/internal/service"
	"bendigotelco/connecthub/internal/telemetry"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Webhook.Secret == "" {
		log.Fatal("webhook.secret is required")
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Initialize cache store (Redis or in-memory)
	var cache repository.CacheStore
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		cache = repository.NewRedisCacheStore(redisClient)
		logger.Info("using Redis cache store")
	case "memory":
		cache = repository.NewMemoryCacheStore()
		logger.Info("using in-memory cache store")
	default:
		logger.Fatal("unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}

	// 4. Optional audit database
	var callLogRepo repository.CallLogRepository
	if cfg.Database.Postgres.Enabled {
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		callLogRepo = repository.NewPGCallLogRepository(db)
	}

	// 5. Secrets provider with the 5-minute cache in front
	var backend secrets.Provider
	switch cfg.Secrets.Backend {
	case "file":
		backend = secrets.NewFileProvider(cfg.Secrets.File)
	case "static":
		backend = secrets.NewStaticProvider(secrets.Bundle{
			APIBaseURL:   cfg.Secrets.Static.APIBaseURL,
			ClientID:     cfg.Secrets.Static.ClientID,
			ClientSecret: cfg.Secrets.Static.ClientSecret,
			TenantID:     cfg.Secrets.Static.TenantID,
		})
	default:
		logger.Fatal("unknown secrets backend", zap.String("backend", cfg.Secrets.Backend))
	}
	secretsProvider := secrets.NewCached(backend, logger)

	// 6. External API client
	apiClient := halo.NewClient(secretsProvider, logger, halo.Options{
		MaxRetries: cfg.Halo.MaxRetries,
		Timeout:    cfg.Halo.Timeout(),
	})

	// 7. Telemetry sink
	sink := telemetry.NewLogSink(logger)

	// 8. Services
	lookupService := service.NewLookupService(cache, secretsProvider, apiClient, sink, logger, cfg.Cache.TTLDuration())
	invalidationService := service.NewInvalidationService(cache, cfg.Webhook.Secret, logger)
	callLogService := service.NewCallLogService(apiClient, callLogRepo, sink, logger)

	// 9. Handlers and router
	router := handler.SetupRouter(cfg, logger,
		handler.NewLookupHandler(lookupService),
		handler.NewWebhookHandler(invalidationService),
		handler.NewCallLogHandler(callLogService),
		handler.NewScreenPopHandler(cfg.Halo.ScreenPopBaseURL),
	)

	// 10. HTTP server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
