package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/fixtures"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

func main() {
	force := flag.Bool("force", false, "overwrite collections that already exist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
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

	tickets, err := persistence.EncodeCollection(fixtures.Tickets())
	if err != nil {
		logger.Fatal("encode tickets", zap.Error(err))
	}
	comments, err := persistence.EncodeCollection(fixtures.Comments())
	if err != nil {
		logger.Fatal("encode comments", zap.Error(err))
	}

	for key, payload := range map[string][]byte{
		persistence.KeyTickets:  tickets,
		persistence.KeyComments: comments,
	} {
		written, err := seedKey(ctx, store, key, payload, *force)
		if err != nil {
			logger.Fatal("seed failed", zap.String("key", key), zap.Error(err))
		}
		if written {
			logger.Info("collection seeded", zap.String("key", key))
		} else {
			logger.Info("collection exists; skipped (use -force to overwrite)", zap.String("key", key))
		}
	}
}

func seedKey(ctx context.Context, store persistence.Store, key string, payload []byte, force bool) (bool, error) {
	if !force {
		_, err := store.Load(ctx, key)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return false, err
		}
	}
	return true, store.Save(ctx, key, payload)
}
