package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/driveline-dms/driveline/internal/app"
	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/customers"
	"github.com/driveline-dms/driveline/internal/identity"
	"github.com/driveline-dms/driveline/internal/notifications"
	"github.com/driveline-dms/driveline/internal/observability"
	"github.com/driveline-dms/driveline/internal/payments"
	"github.com/driveline-dms/driveline/internal/payroll"
	"github.com/driveline-dms/driveline/internal/platform/cache"
	"github.com/driveline-dms/driveline/internal/platform/db"
	"github.com/driveline-dms/driveline/internal/procurement"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/sales/bookings"
	"github.com/driveline-dms/driveline/internal/sales/deliveries"
	"github.com/driveline-dms/driveline/internal/sales/testdrives"
	"github.com/driveline-dms/driveline/internal/vendors"
	"github.com/driveline-dms/driveline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	identityRepo := identity.NewRepository(pool)
	identityService := identity.NewService(identityRepo, redisClient, cfg.TokenTTL)
	identityHandler := identity.NewHandler(logger, identityService)

	var registry rbac.Registry
	var roleStore rbac.RoleStore
	if cfg.RBACSource == "dynamic" {
		registry = rbac.NewDynamicRegistry(pool)
		roleStore = rbac.NewRoleStore(pool)
	} else {
		registry = rbac.NewStaticRegistry()
	}
	assignments := rbac.NewAssignmentStore(pool)
	aggregator := rbac.NewAggregator(assignments, registry).WithCache(redisClient, cfg.RBACCacheTTL)
	gate := rbac.NewGate(aggregator)
	rbacService := rbac.NewService(registry, assignments, aggregator, gate, identityService, roleStore, logger)
	rbacMiddleware := rbac.Middleware{Gate: gate, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	recorder := auditlog.NewRecorder(pool, logger)

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	notificationService := notifications.NewService(logger, notifications.NewRepository(pool), gate, recorder, queue)
	vendorService := vendors.NewService(logger, vendors.NewRepository(pool), gate, recorder)
	customerService := customers.NewService(logger, customers.NewRepository(pool), gate, recorder)
	paymentService := payments.NewService(logger, payments.NewRepository(pool), gate, recorder, notificationService)
	payrollService := payroll.NewService(logger, payroll.NewRepository(pool), gate, recorder)
	procurementService := procurement.NewService(logger, procurement.NewRepository(pool), gate, recorder)
	testDriveService := testdrives.NewService(logger, testdrives.NewRepository(pool), gate, recorder)
	bookingService := bookings.NewService(logger, bookings.NewRepository(pool), gate, recorder)
	deliveryService := deliveries.NewService(logger, deliveries.NewRepository(pool), gate, recorder, bookingService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Config:          cfg,
		Logger:          logger,
		Metrics:         metrics,
		IdentityService: identityService,
		Identity:        identityHandler,
		RBAC:            rbacHandler,
		Vendors:         vendors.NewHandler(vendorService, rbacMiddleware),
		Customers:       customers.NewHandler(customerService, rbacMiddleware),
		Payments:        payments.NewHandler(paymentService, rbacMiddleware),
		Payroll:         payroll.NewHandler(payrollService, rbacMiddleware),
		Procurement:     procurement.NewHandler(procurementService, rbacMiddleware),
		TestDrives:      testdrives.NewHandler(testDriveService, rbacMiddleware),
		Bookings:        bookings.NewHandler(bookingService, rbacMiddleware),
		Deliveries:      deliveries.NewHandler(deliveryService, rbacMiddleware),
		Notifications:   notifications.NewHandler(notificationService, rbacMiddleware),
		AuditLogs:       auditlog.NewHandler(auditlog.NewRepository(pool), rbacMiddleware),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
