package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/twin-workflow-service/internal/api/http"
	"github.com/spec-kit/twin-workflow-service/internal/api/http/handlers"
	"github.com/spec-kit/twin-workflow-service/internal/auth"
	"github.com/spec-kit/twin-workflow-service/internal/client"
	"github.com/spec-kit/twin-workflow-service/internal/config"
	"github.com/spec-kit/twin-workflow-service/internal/events"
	"github.com/spec-kit/twin-workflow-service/internal/observability"
	"github.com/spec-kit/twin-workflow-service/internal/persistence"
	"github.com/spec-kit/twin-workflow-service/internal/repository"
	"github.com/spec-kit/twin-workflow-service/internal/service"
	"github.com/spec-kit/twin-workflow-service/internal/worker"
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
	cache := persistence.NewRedisCache(redis)

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	sequenceRepo := repository.NewSequenceRepository(pool)
	statusRepo := repository.NewTicketStatusRepository(pool)
	statsRepo := repository.NewStatisticsRepository(pool)
	reporterRepo := repository.NewReporterRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	diagnosticRepo := repository.NewDiagnosticRepository(pool)
	auditRepo := repository.NewAuditTrailRepository(pool)

	twinClient := client.NewDigitalTwinClient(cfg.DigitalTwin, logger)
	directoryClient := client.NewDirectoryClient(cfg.Directory, logger)
	insightClient := client.NewInsightClient(cfg.Insight, logger)

	clock := clockwork.NewRealClock()
	dispatcher := events.NewInMemoryDispatcher(logger)

	statusService := service.NewStatusService(statusRepo, cache, cfg.Workflow.StatusCacheTTL(), logger)
	validator := service.NewTransitionValidator(statusService, cfg.Workflow.MappedIntegrationEnabled)
	resolver := service.NewTwinResolver(twinClient, cache, cfg.Workflow.TwinCacheTTL(), logger)
	statisticsService := service.NewStatisticsService(statsRepo, statusService, clock)
	catalogService := service.NewCatalogService(categoryRepo, reporterRepo)

	workflowService := service.NewWorkflowService(cfg.Workflow, service.WorkflowDependencies{
		TicketRepo:     ticketRepo,
		SequenceRepo:   sequenceRepo,
		ReporterRepo:   reporterRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		TaskRepo:       taskRepo,
		DiagnosticRepo: diagnosticRepo,
		AuditRepo:      auditRepo,
		Statuses:       statusService,
		Validator:      validator,
		Resolver:       resolver,
		Directory:      directoryClient,
		Insights:       insightClient,
		Dispatcher:     dispatcher,
		Clock:          clock,
		Logger:         logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(workflowService, statusService),
		Statistics:     handlers.NewStatisticsHandler(statisticsService),
		Statuses:       handlers.NewStatusesHandler(statusService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
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
