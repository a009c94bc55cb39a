package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/fixtures"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
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

	var redis *persistence.Redis
	if cfg.UsesRedis() {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
	}

	store, err := persistence.OpenStore(ctx, cfg, persistence.Backends{Postgres: pg, Redis: redis}, logger)
	if err != nil {
		logger.Fatal("failed to open collection store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	clk := clock.Real()

	users, err := loadDirectory(cfg)
	if err != nil {
		logger.Fatal("failed to load user directory", zap.Error(err))
	}

	ticketRepo := repository.NewTicketRepository(store, clk, logger)
	commentRepo := repository.NewCommentRepository(store, clk, logger)
	var ticketSeed []domain.Ticket
	var commentSeed []domain.Comment
	if cfg.Storage.SeedFixtures {
		ticketSeed, commentSeed = fixtures.Tickets(), fixtures.Comments()
	}
	if err := ticketRepo.Load(ctx, ticketSeed); err != nil {
		logger.Fatal("failed to load tickets", zap.Error(err))
	}
	if err := commentRepo.Load(ctx, commentSeed); err != nil {
		logger.Fatal("failed to load comments", zap.Error(err))
	}

	var sessions auth.SessionStore
	var sweeper worker.Sweeper
	if cfg.Auth.SessionDriver == config.DriverRedis {
		sessions = auth.NewRedisSessionStore(redis.Client, cfg.Redis.KeyPrefix, clk)
	} else {
		memSessions := auth.NewMemorySessionStore(clk)
		sessions, sweeper = memSessions, memSessions
	}
	sweepDone := worker.StartSessionSweeper(ctx, sweeper, time.Minute, logger)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), clk)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   users,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		UserRepo:    users,
		Tickets:     ticketService,
		Clock:       clk,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: users,
		Sessions: sessions,
		Tokens:   tokens,
		Clock:    clk,
		Logger:   logger,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"store":    store,
			"sessions": sessions,
		}, metrics),
		Users:          handlers.NewUsersHandler(authService, service.NewUserService(users)),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions, users),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	cancel()
	<-sweepDone
}

func loadDirectory(cfg *config.Config) (repository.UserRepository, error) {
	seed := fixtures.Users()
	if cfg.Directory.UsersFile != "" {
		fromFile, err := fixtures.LoadUsersFile(cfg.Directory.UsersFile)
		if err != nil {
			return nil, err
		}
		seed = fromFile
	}
	records, err := auth.HashSeed(seed, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	return repository.NewUserDirectory(records)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
