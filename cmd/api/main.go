package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/actions"
	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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
	groupRepo := repository.NewGroupRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	cancelledRepo := repository.NewCancelledTicketRepository(pool)
	cancelReasonRepo := repository.NewCancelReasonRepository(pool)
	idleLimitRepo := repository.NewIdleDurationLimitRepository(pool)
	solutionTimeRepo := repository.NewSolutionTimeRepository(pool)
	approvalRepo := repository.NewApprovalRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)

	txManager := persistence.NewTxManager(pool)
	dispatcher := events.NewInMemoryDispatcher()

	registry := actions.NewRegistry()
	actions.RegisterInventoryActions(registry, inventoryRepo)

	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authService := service.NewAuthService(*cfg, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:       ticketRepo,
		HistoryRepo:      historyRepo,
		CancelledRepo:    cancelledRepo,
		CancelReasonRepo: cancelReasonRepo,
		GroupRepo:        groupRepo,
		UserRepo:         userRepo,
		Tx:               txManager,
		Dispatcher:       dispatcher,
	})
	slaService := service.NewSLAService(service.SLADependencies{
		TicketRepo:       ticketRepo,
		IdleLimitRepo:    idleLimitRepo,
		SolutionTimeRepo: solutionTimeRepo,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		ApprovalRepo: approvalRepo,
		UserRepo:     userRepo,
		GroupRepo:    groupRepo,
		Registry:     registry,
		Notifier:     notificationService,
		Tx:           txManager,
		Dispatcher:   dispatcher,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		SLA:            handlers.NewSLAHandler(slaService),
		Approvals:      handlers.NewApprovalsHandler(approvalService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
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
