package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shop-service/internal/api/http"
	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/observability"
	"github.com/spec-kit/shop-service/internal/persistence"
	"github.com/spec-kit/shop-service/internal/repository"
	"github.com/spec-kit/shop-service/internal/revocation"
	"github.com/spec-kit/shop-service/internal/service"
	"github.com/spec-kit/shop-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	readiness := map[string]handlers.Pinger{}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		userRepo     repository.UserRepository
		categoryRepo repository.CategoryRepository
		productRepo  repository.ProductRepository
	)
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		categoryRepo = repository.NewCategoryRepository(pool)
		productRepo = repository.NewProductRepository(pool)
		readiness["postgres"] = pg
	} else {
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		categoryRepo = store.Categories()
		productRepo = store.Products()
	}

	var ledger auth.RevocationLedger
	switch cfg.Revocation.Backend {
	case config.RevocationBackendRedis:
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		ledger = revocation.NewRedisLedger(redis.Client)
		readiness["redis"] = redis
	default:
		memLedger := revocation.NewMemoryLedger()
		ledger = memLedger
		sweeper := worker.NewRevocationSweeper(memLedger, cfg.Revocation.SweepInterval(), logger, metrics)
		go sweeper.Run(ctx)
		logger.Warn("revocation ledger is in memory; revoked tokens are forgotten on restart")
	}

	tokens, err := auth.NewTokenManager(auth.NewSigningConfig(cfg.Auth), ledger, auth.WithLogger(logger))
	if err != nil {
		logger.Fatal("invalid signing configuration", zap.Error(err))
	}
	credentials, err := auth.NewCredentialStore(userRepo, cfg.Auth.BcryptCost, cfg.Auth.PasswordMinLength)
	if err != nil {
		logger.Fatal("failed to init credential store", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    userRepo,
		Credentials: credentials,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CategoryRepo: categoryRepo,
		ProductRepo:  productRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(authService),
		Profile:        handlers.NewProfileHandler(authService),
		Categories:     handlers.NewCategoriesHandler(catalogService),
		Products:       handlers.NewProductsHandler(catalogService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.NewRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginRateBurst, 0),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
