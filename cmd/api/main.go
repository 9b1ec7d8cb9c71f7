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

	httptransport "github.com/complyhub/compliance-service/internal/api/http"
	"github.com/complyhub/compliance-service/internal/api/http/handlers"
	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/config"
	"github.com/complyhub/compliance-service/internal/events"
	"github.com/complyhub/compliance-service/internal/observability"
	"github.com/complyhub/compliance-service/internal/persistence"
	"github.com/complyhub/compliance-service/internal/repository"
	"github.com/complyhub/compliance-service/internal/service"
	"github.com/complyhub/compliance-service/internal/worker"
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
	identityRepo := repository.NewIdentityRepository(pool)
	riskRepo := repository.NewRiskRepository(pool)
	activityRepo := repository.NewLoginActivityRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	revocations := auth.NewRedisRevocationList(redis.Client)
	engine := auth.NewEngine(logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	auditService := service.NewAuditService(dispatcher, activityRepo, logger)
	worker.StartAuditWorker(auditService)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		IdentityRepo: identityRepo,
		Revocations:  revocations,
		Tokens:       tokens,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	riskService := service.NewRiskService(riskRepo, engine)
	authMiddleware := auth.NewMiddleware(tokens)

	if cfg.Sweep.Enabled {
		locker := service.NewRedisAdvisoryLocker(redis.Client)
		sweeper := service.NewSweeper(locker, func(ctx context.Context, now time.Time) (int64, error) {
			return riskRepo.MarkOverdue(ctx, now)
		}, logger, cfg.Sweep.LockTTL())
		sweeper.Start(ctx, cfg.Sweep.Interval())
	}

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth)
	risksHandler := handlers.NewRisksHandler(riskService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Risks:          risksHandler,
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
