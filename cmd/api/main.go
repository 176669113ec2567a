package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-sla-service/internal/api/http"
	"github.com/spec-kit/complaint-sla-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-sla-service/internal/auth"
	"github.com/spec-kit/complaint-sla-service/internal/cache"
	"github.com/spec-kit/complaint-sla-service/internal/config"
	"github.com/spec-kit/complaint-sla-service/internal/events"
	"github.com/spec-kit/complaint-sla-service/internal/observability"
	"github.com/spec-kit/complaint-sla-service/internal/persistence"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
	"github.com/spec-kit/complaint-sla-service/internal/service"
	"github.com/spec-kit/complaint-sla-service/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	unitRepo := repository.NewUnitRepository(pool)
	categoryRepo := repository.NewServiceCategoryRepository(pool)
	patientTypeRepo := repository.NewPatientTypeRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	slaRuleRepo := repository.NewSlaRuleRepository(pool)
	escalationRuleRepo := repository.NewEscalationRuleRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)

	ruleCache := cache.NewRuleCache(redis.Client, cfg.Sla.RuleCacheTTL(), logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  userRepo,
		StaffRepo: staffRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		UnitRepo:        unitRepo,
		CategoryRepo:    categoryRepo,
		PatientTypeRepo: patientTypeRepo,
		SlaRuleRepo:     slaRuleRepo,
		RuleCache:       ruleCache,
		Dispatcher:      dispatcher,
	})
	reportService := service.NewReportService(ticketRepo, escalationRepo, cfg.Sla.MaxScanRows)
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo:         ticketRepo,
		EscalationRuleRepo: escalationRuleRepo,
		EscalationRepo:     escalationRepo,
		RuleCache:          ruleCache,
		Dispatcher:         dispatcher,
		Logger:             logger,
		ScanLimit:          cfg.Sla.MaxScanRows,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UnitRepo:           unitRepo,
		CategoryRepo:       categoryRepo,
		PatientTypeRepo:    patientTypeRepo,
		SlaRuleRepo:        slaRuleRepo,
		EscalationRuleRepo: escalationRuleRepo,
		StaffRepo:          staffRepo,
		RuleCache:          ruleCache,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, staffRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, escalationService),
		Escalations:    handlers.NewEscalationsHandler(escalationService),
		Dashboard:      handlers.NewDashboardHandler(reportService),
		Admin:          handlers.NewAdminHandler(adminService, authService),
		AuthMiddleware: authMiddleware,
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
