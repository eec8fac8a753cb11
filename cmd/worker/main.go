package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/driveline-dms/driveline/internal/app"
	"github.com/driveline-dms/driveline/internal/auditlog"
	jobmetrics "github.com/driveline-dms/driveline/internal/jobs"
	"github.com/driveline-dms/driveline/internal/notifications"
	"github.com/driveline-dms/driveline/internal/platform/cache"
	"github.com/driveline-dms/driveline/internal/platform/db"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/sales/testdrives"
	"github.com/driveline-dms/driveline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var registry rbac.Registry
	if cfg.RBACSource == "dynamic" {
		registry = rbac.NewDynamicRegistry(pool)
	} else {
		registry = rbac.NewStaticRegistry()
	}
	assignments := rbac.NewAssignmentStore(pool)
	gate := rbac.NewGate(rbac.NewAggregator(assignments, registry).WithCache(redisClient, cfg.RBACCacheTTL))

	recorder := auditlog.NewRecorder(pool, logger)
	metrics := jobmetrics.NewMetrics(nil)

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	notificationRepo := notifications.NewRepository(pool)
	notificationService := notifications.NewService(logger, notificationRepo, gate, recorder, queue)
	testDriveService := testdrives.NewService(logger, testdrives.NewRepository(pool), gate, recorder)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskNotificationDeliver, Handler: notifications.NewDeliveryHandler(notificationRepo, logger, metrics)},
			{Type: jobs.TaskTestDriveReminders, Handler: testdrives.NewReminderHandler(testDriveService, notificationService, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 9 * * *", Task: jobs.NewTestDriveRemindersTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
