package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

// App owns the HTTP server and the connections behind it.
type App struct {
	Fiber *fiber.App
	Store *persistence.Store
	Redis *persistence.Redis
}

// New opens the store, seeds the admin account and wires every route.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := persistence.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if cfg.Store.RunMigrations {
		if err := persistence.RunMigrations(store, logger); err != nil {
			store.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	revoked := auth.NewMemoryRevocationStore()
	if redis != nil {
		revoked = auth.NewRedisRevocationStore(redis.Client)
	}

	userRepo := repository.NewUserRepository(store)
	ticketRepo := repository.NewTicketRepository(store)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, dispatcher)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	exportService := service.NewExportService(ticketRepo)

	if _, err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		redis.Close()
		store.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL())
	sessions := auth.NewSessionManager(tokens, revoked, cfg.Auth.CookieSecure, logger)
	sessionMiddleware := auth.NewSessionMiddleware(sessions, userRepo, logger)

	metrics := observability.NewMetrics()
	fiberApp := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		Views:                 httptransport.NewViews(),
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(fiberApp, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(fiberApp, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redis, metrics),
		Auth:      handlers.NewAuthHandler(authService, sessions, logger),
		Dashboard: handlers.NewDashboardHandler(ticketService, userService),
		Tickets:   handlers.NewTicketsHandler(ticketService, userService, logger),
		Exports:   handlers.NewExportHandler(exportService),
		Users:     handlers.NewUsersHandler(userService),
		Session:   sessionMiddleware,
	})

	return &App{Fiber: fiberApp, Store: store, Redis: redis}, nil
}

// Close shuts the server down and releases connections.
func (a *App) Close() error {
	err := a.Fiber.Shutdown()
	a.Redis.Close()
	a.Store.Close()
	return err
}
