package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/access"
	httptransport "github.com/spec-kit/clinic-pos/internal/api/http"
	"github.com/spec-kit/clinic-pos/internal/api/http/handlers"
	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/config"
	"github.com/spec-kit/clinic-pos/internal/events"
	"github.com/spec-kit/clinic-pos/internal/landing"
	"github.com/spec-kit/clinic-pos/internal/observability"
	"github.com/spec-kit/clinic-pos/internal/persistence"
	"github.com/spec-kit/clinic-pos/internal/repository"
	"github.com/spec-kit/clinic-pos/internal/service"
	"github.com/spec-kit/clinic-pos/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			return serve(cmd.Context(), *cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	policy, err := access.Load(cfg.Access.PolicyFile)
	if err != nil {
		return err
	}
	logger.Info("access policy loaded", zap.String("file", cfg.Access.PolicyFile), zap.Int("rules", len(policy.Rules())))

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var staffRepo repository.StaffRepository
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		staffRepo = repository.NewStaffRepository(pool)
	} else {
		logger.Warn("using in-memory staff directory")
		staffRepo = repository.NewMemoryStaffRepository()
	}
	directory := repository.NewCachedDirectory(staffRepo, cfg.Directory.CacheTTL())

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var revoked auth.RevocationStore
	if redis.Enabled() {
		revoked = auth.NewRedisRevocationStore(redis.Client)
	} else {
		revoked = auth.NewMemoryRevocationStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		StaffRepo:  directory,
		Revocation: revoked,
		Resolver:   landing.NewResolver(directory, logger, metrics),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err := service.EnsureAdmin(ctx, directory, cfg, logger); err != nil {
		return err
	}

	checks := []handlers.DependencyCheck{{Name: "postgres", Ping: pg.Ping, Optional: pg.PoolHandle() == nil}}
	if redis.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:      handlers.NewAuthHandler(authService),
		Access:    handlers.NewAccessHandler(policy),
		Dashboard: handlers.NewDashboardHandler(policy),
		Session:   auth.NewSessionMiddleware(authService.TokenManager(), directory, revoked, logger),
		Policy:    policy,
		Metrics:   metrics,
		Gatherer:  registry,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(context.Cause(ctx)))
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}
