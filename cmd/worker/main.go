package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"cuotas/api/internal/cache"
	"cuotas/api/internal/config"
	"cuotas/api/internal/database"
	"cuotas/api/internal/jobs"
	"cuotas/api/internal/log"
	"cuotas/api/internal/queue"
	"cuotas/api/internal/repository"
	"cuotas/api/internal/service"
	"cuotas/api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "worker", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis, "cuotas-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	enqueuer := tasks.NewEnqueuer(queue.NewProducer(client, cfg.Worker.Stream, cfg.Worker.MaxLen))
	installments := service.NewInstallmentService(
		repository.NewInstallmentRepository(dbPool),
		repository.NewClientRepository(dbPool),
		enqueuer,
		cfg.Installments.ReminderDays,
		logger,
	)

	processor := tasks.NewProcessor(repository.NewNotificationRepository(dbPool), installments, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	scheduler := jobs.NewScheduler(enqueuer, cfg.Installments.ScanSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Installments.ScanSchedule).Msg("scheduler start failed")
	}
	defer scheduler.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
