package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/openticket/helpdesk/internal/api/http"
	"github.com/openticket/helpdesk/internal/api/http/handlers"
	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/front"
	"github.com/openticket/helpdesk/internal/observability"
	"github.com/openticket/helpdesk/internal/persistence"
	"github.com/openticket/helpdesk/internal/realtime"
	"github.com/openticket/helpdesk/internal/repository"
	"github.com/openticket/helpdesk/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.Postgres.RunMigrations {
		if err := persistence.Migrate(ctx, cfg.Postgres.DSN, persistence.MigrateUp, logger); err != nil {
			return err
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	rds := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rds.Close()

	metrics := observability.NewMetrics("helpdesk")

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool, userRepo)
	statsCache := repository.NewStatsCache(rds.Client, cfg.Stats.CacheTTL(), logger)

	hub := realtime.NewHub(cfg.Realtime.Group, cfg.Realtime.SendBuffer, logger, metrics)
	broadcaster := events.NewBroadcaster(hub, cfg.Realtime.Group, logger)
	notifier := service.NewNotificationService(broadcaster, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.RefreshTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, userRepo, tokens)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		StatsCache: statsCache,
		Notifier:   notifier,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		Views:   front.NewEngine(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    rds,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(notifier),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		Gateway: realtime.NewGateway(hub, broadcaster, logger, realtime.GatewayOptions{
			WriteTimeout: cfg.Realtime.WriteTimeout(),
			EchoEnabled:  cfg.Realtime.EchoEnabled,
		}),
		Metrics: metrics,
	})

	sessions := front.NewSessionStore(cfg.Session)
	front.NewHandler(ticketService, authService, sessions, logger).RegisterRoutes(app, userRepo)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			hub.Shutdown()
			return err
		}
	}

	// close websocket clients first so their handlers return
	hub.Shutdown()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	return nil
}
