package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

// Collection keys.
const (
	KeyTickets  = "tickets"
	KeyComments = "comments"
)

// ErrNotFound is returned by Load when nothing is stored under a key.
var ErrNotFound = errors.New("persistence: key not found")

// Store persists whole serialized collections under string keys.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Backends carries the shared connections a Store may be built on.
type Backends struct {
	Postgres *Postgres
	Redis    *Redis
}

// OpenStore builds the Store selected by cfg.Storage.Driver. Stores hold
// whole snapshots without compare-and-swap, so concurrent writers in
// separate processes can still lose an update that lands between another
// writer's read and save. Run one API process per shared store.
func OpenStore(ctx context.Context, cfg *config.Config, backends Backends, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory, "":
		logger.Info("using in-memory collection store")
		return NewMemoryStore(), nil
	case config.DriverBolt:
		store, err := NewBoltStore(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("using bolt collection store", zap.String("path", cfg.Storage.BoltPath))
		return store, nil
	case config.DriverPostgres:
		if backends.Postgres.PoolHandle() == nil {
			return nil, errors.New("postgres store requires a connection pool")
		}
		logger.Info("using postgres collection store")
		return NewPostgresStore(backends.Postgres.PoolHandle()), nil
	case config.DriverRedis:
		if backends.Redis == nil || backends.Redis.Client == nil {
			return nil, errors.New("redis store requires a client")
		}
		logger.Info("using redis collection store")
		return NewRedisStore(backends.Redis.Client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
