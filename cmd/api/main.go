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

	httptransport "github.com/spec-kit/stall-admin/internal/api/http"
	"github.com/spec-kit/stall-admin/internal/api/http/handlers"
	"github.com/spec-kit/stall-admin/internal/audit"
	"github.com/spec-kit/stall-admin/internal/auth"
	"github.com/spec-kit/stall-admin/internal/config"
	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/internal/events"
	"github.com/spec-kit/stall-admin/internal/identity"
	"github.com/spec-kit/stall-admin/internal/observability"
	"github.com/spec-kit/stall-admin/internal/persistence"
	"github.com/spec-kit/stall-admin/internal/repository"
	"github.com/spec-kit/stall-admin/internal/service"
	"github.com/spec-kit/stall-admin/internal/worker"
)

type stores struct {
	profiles repository.ProfileRepository
	audits   repository.AuditRepository
	reports  repository.ReportRepository
	check    handlers.DependencyCheck
}

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

	calendar, err := daterange.LoadCalendar(cfg.Calendar.Timezone)
	if err != nil {
		logger.Fatal("failed to load civil timezone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	st := buildStores(cfg, pg, calendar)

	identityClient := identity.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.Timeout())
	var resolver auth.BearerResolver = auth.NewProviderResolver(identityClient)
	if cfg.Auth.JWTSecret != "" {
		logger.Info("verifying access tokens locally")
		resolver = auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	}
	authMiddleware := auth.NewAuthMiddleware(resolver, st.profiles, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(dispatcher, audit.NewRecorder(st.audits, logger))

	staffService := service.NewStaffService(cfg.Supabase.ConfirmationRedirect(), service.StaffDependencies{
		Identity:   identityClient,
		Profiles:   st.profiles,
		Dispatcher: dispatcher,
		Cooldown:   persistence.NewInviteCooldown(redis, cfg.Redis.InviteCooldown()),
		Logger:     logger,
	})
	reportService := service.NewReportService(st.reports, calendar, cfg.Report.MaxRangeDays)
	auditService := service.NewAuditService(st.audits, calendar, dispatcher)

	checks := []handlers.DependencyCheck{st.check}
	if redis.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		BasePath:       cfg.App.BasePath,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, checks...),
		Staff:          handlers.NewStaffHandler(staffService),
		Reports:        handlers.NewReportHandler(reportService, auditService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("base_path", cfg.App.BasePath))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// buildStores picks the direct Postgres repositories when a pool is
// configured and the REST store otherwise.
func buildStores(cfg *config.Config, pg *persistence.Postgres, calendar *daterange.Calendar) stores {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return stores{
			profiles: repository.NewProfileRepository(pool),
			audits:   repository.NewAuditRepository(pool, calendar),
			reports:  repository.NewReportRepository(pool, calendar),
			check:    handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping},
		}
	}

	rest := repository.NewRESTStore(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.Timeout())
	return stores{
		profiles: repository.NewRESTProfileRepository(rest),
		audits:   repository.NewRESTAuditRepository(rest, calendar),
		reports:  repository.NewRESTReportRepository(rest, calendar),
		check:    handlers.DependencyCheck{Name: "rest_store", Ping: rest.Ping},
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
