package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/cache"
	"cuotas/api/internal/config"
	"cuotas/api/internal/database"
	"cuotas/api/internal/handlers"
	"cuotas/api/internal/log"
	"cuotas/api/internal/middleware"
	"cuotas/api/internal/obs"
	"cuotas/api/internal/queue"
	"cuotas/api/internal/repository"
	"cuotas/api/internal/security"
	"cuotas/api/internal/server"
	"cuotas/api/internal/service"
	"cuotas/api/internal/storage"
	"cuotas/api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "api", cfg.Logging.Level)
	obs.Init()

	ctx := context.Background()

	dbPool, err := database.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, "cuotas-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure proof bucket failed")
	}

	tokens, err := security.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token manager")
	}

	accounts := repository.NewAccountRepository(dbPool)
	realEstates := repository.NewRealEstateRepository(dbPool)
	properties := repository.NewPropertyRepository(dbPool)
	clients := repository.NewClientRepository(dbPool)
	installments := repository.NewInstallmentRepository(dbPool)
	payments := repository.NewPaymentRepository(dbPool)
	notifications := repository.NewNotificationRepository(dbPool)

	pipeline := authz.NewPipeline(
		authz.NewVerifier(tokens, accounts),
		authz.NewScopeResolver(realEstates, clients),
		authz.WithObserver(obs.ObserveAuthz),
	)
	gate := middleware.NewGatekeeper(pipeline, logger, !cfg.IsProduction(), obs.ObserveAuthz)

	enqueuer := tasks.NewEnqueuer(queue.NewProducer(redisClient, cfg.Worker.Stream, cfg.Worker.MaxLen))

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Gate:          gate,
		Auth:          service.NewAuthService(accounts, tokens, logger),
		Clients:       service.NewClientService(clients, accounts, properties, logger),
		Installments:  service.NewInstallmentService(installments, clients, enqueuer, cfg.Installments.ReminderDays, logger),
		Payments:      service.NewPaymentService(payments, clients, objectStore, enqueuer, cfg.Uploads.MaxBytes, logger),
		RealEstates:   realEstates,
		Properties:    properties,
		Notifications: notifications,
		Checks: map[string]handlers.HealthCheck{
			"database": dbPool.Ping,
			"cache":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"storage":  objectStore.Ping,
		},
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
