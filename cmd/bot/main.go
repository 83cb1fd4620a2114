package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/creatorhub/ticket-bot/internal/api/http"
	"github.com/creatorhub/ticket-bot/internal/api/http/handlers"
	"github.com/creatorhub/ticket-bot/internal/auth"
	"github.com/creatorhub/ticket-bot/internal/bot"
	"github.com/creatorhub/ticket-bot/internal/config"
	"github.com/creatorhub/ticket-bot/internal/events"
	"github.com/creatorhub/ticket-bot/internal/greeter"
	"github.com/creatorhub/ticket-bot/internal/observability"
	"github.com/creatorhub/ticket-bot/internal/persistence"
	"github.com/creatorhub/ticket-bot/internal/platform"
	"github.com/creatorhub/ticket-bot/internal/repository"
	"github.com/creatorhub/ticket-bot/internal/service"
	"github.com/creatorhub/ticket-bot/internal/state"
	"github.com/creatorhub/ticket-bot/internal/ticket"
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

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var store state.Store
	var redis *persistence.Redis
	switch cfg.State.Backend {
	case "redis":
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		store = state.NewRedisStore(redis.Client, cfg.State.RedisKey, logger)
	default:
		store = state.NewFileStore(cfg.State.FilePath, logger)
	}

	var history repository.TicketHistoryRepository
	if pool := pg.PoolHandle(); pool != nil {
		history = repository.NewTicketHistoryRepository(pool)
	}

	session, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to build discord session", zap.Error(err))
	}
	me, err := session.User("@me")
	if err != nil {
		logger.Fatal("failed to identify bot user", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	pf := platform.NewDiscord(session)

	manager := ticket.NewManager(ticket.Config{
		BotUserID:        me.ID,
		CategoryID:       cfg.Ticket.CategoryID,
		CategoryName:     cfg.Ticket.CategoryName,
		PanelChannelID:   cfg.Ticket.PanelChannelID,
		PanelChannelName: cfg.Ticket.PanelChannelName,
		PanelMessage:     cfg.Ticket.PanelMessage,
		IntroMessage:     cfg.Ticket.IntroMessage,
		StaffRoleIDs:     cfg.Ticket.StaffRoleIDs,
		DeleteDelay:      cfg.Ticket.DeleteDelay(),
		AutoDelete:       cfg.Ticket.AutoDelete,
	}, ticket.Dependencies{
		Store:      store,
		Platform:   pf,
		History:    history,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	notifications := service.NewNotificationService(dispatcher, pf, logger, cfg.Notification)
	notifications.RegisterHandlers()

	metrics := observability.NewMetrics()
	welcome := greeter.New(pf, cfg.Discord, dispatcher, logger)

	b := bot.New(cfg.Discord.GuildID, me.ID, bot.Dependencies{
		Session: session,
		Manager: manager,
		Greeter: welcome,
		Metrics: metrics,
		Logger:  logger,
	})
	b.Register()

	if err := session.Open(); err != nil {
		logger.Fatal("failed to open gateway connection", zap.Error(err))
	}
	defer session.Close()

	if err := b.RegisterCommands(); err != nil {
		logger.Error("failed to register setup command", zap.Error(err))
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(cfg.Auth.AdminKey, tokens),
		Ops:            handlers.NewOpsHandler(manager, history, metrics),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	manager.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
