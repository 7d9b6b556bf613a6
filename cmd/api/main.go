package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grievance-service/internal/api/http"
	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	grievanceRepo := repository.NewGrievanceRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	citizenRepo := repository.NewCitizenRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	cacheTTL := time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second
	cachedReader := repository.NewCachedGrievanceReader(grievanceRepo, redis.Client, cacheTTL, logger)

	dispatcher := events.NewInMemoryDispatcher()

	grievanceService := service.NewGrievanceService(service.GrievanceDependencies{
		GrievanceRepo:  grievanceRepo,
		Reader:         cachedReader,
		DepartmentRepo: departmentRepo,
		Cache:          cachedReader,
		Dispatcher:     dispatcher,
	})
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		CitizenRepo: citizenRepo,
		StaffRepo:   staffRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), citizenRepo, staffRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Departments:     handlers.NewDepartmentsHandler(departmentRepo),
		Citizens:        handlers.NewCitizensHandler(authService),
		Staff:           handlers.NewStaffHandler(authService),
		Grievances:      handlers.NewGrievancesHandler(grievanceService),
		StaffGrievances: handlers.NewStaffGrievancesHandler(grievanceService),
		Audit:           handlers.NewAuditHandler(auditService),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
