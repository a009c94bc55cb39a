package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/persistence"
)

// ErrNotFound is returned when a record id has no match.
var ErrNotFound = errors.New("record not found")

// collection is a working set of one entity type, persisted as a single
// snapshot under key. Every call re-reads the snapshot so writes made by
// other processes between calls are picked up. Mutations hold mu across
// read-modify-write and the save, so writers in one process serialize.
type collection[T any] struct {
	mu      sync.Mutex
	key     string
	store   persistence.Store
	logger  *zap.Logger
	records []T
	// frozen is set once the store holds a snapshot written by a newer
	// schema. Writes are refused so that data is never downgraded.
	frozen error
}

func newCollection[T any](key string, store persistence.Store, logger *zap.Logger) *collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &collection[T]{key: key, store: store, logger: logger}
}

// load replaces the working set with the persisted snapshot. An absent
// snapshot is initialised from seed (and written back when seed is
// non-nil). A malformed snapshot is logged and treated as empty. A
// snapshot from a newer schema is an error.
func (c *collection[T]) load(ctx context.Context, seed []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.store.Load(ctx, c.key)
	if errors.Is(err, persistence.ErrNotFound) {
		c.records = slices.Clone(seed)
		if seed == nil {
			return nil
		}
		c.logger.Info("seeding collection", zap.String("key", c.key), zap.Int("records", len(seed)))
		return c.persist(ctx, c.records)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", c.key, err)
	}

	version, err := c.apply(data)
	if err != nil {
		return err
	}
	if version < persistence.SchemaVersion {
		c.logger.Info("upgrading persisted collection",
			zap.String("key", c.key), zap.Int("from", version), zap.Int("to", persistence.SchemaVersion))
		return c.persist(ctx, c.records)
	}
	return nil
}

// apply decodes data into the working set and returns its stored version.
// Must be called with mu held.
func (c *collection[T]) apply(data []byte) (int, error) {
	records, version, err := persistence.DecodeCollection[T](data)
	switch {
	case errors.Is(err, persistence.ErrUnsupportedVersion):
		c.frozen = fmt.Errorf("collection %s is read-only: %w", c.key, err)
		c.logger.Error("persisted collection has a newer schema",
			zap.String("key", c.key), zap.Int("version", version), zap.Int("supported", persistence.SchemaVersion))
		return version, c.frozen
	case err != nil:
		c.logger.Warn("malformed persisted collection; treating as empty",
			zap.String("key", c.key), zap.Error(err))
		c.records = nil
		return persistence.SchemaVersion, nil
	}
	c.frozen = nil
	c.records = records
	return version, nil
}

// refresh re-reads the persisted snapshot. An absent key keeps the
// current working set. Must be called with mu held.
func (c *collection[T]) refresh(ctx context.Context) error {
	data, err := c.store.Load(ctx, c.key)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", c.key, err)
	}
	_, err = c.apply(data)
	return err
}

// snapshot returns a copy of the freshest working set. When the store
// cannot be read the last known records are served.
func (c *collection[T]) snapshot(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refresh(ctx); err != nil && !errors.Is(err, persistence.ErrUnsupportedVersion) {
		c.logger.Warn("serving cached collection", zap.String("key", c.key), zap.Error(err))
	}
	return slices.Clone(c.records)
}

// mutate re-reads the snapshot, applies fn to a copy and commits the
// result only if it persists successfully.
func (c *collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refresh(ctx); err != nil {
		return err
	}
	if c.frozen != nil {
		return c.frozen
	}
	next, err := fn(slices.Clone(c.records))
	if err != nil {
		return err
	}
	if err := c.persist(ctx, next); err != nil {
		return err
	}
	c.records = next
	return nil
}

func (c *collection[T]) persist(ctx context.Context, records []T) error {
	data, err := persistence.EncodeCollection(records)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, c.key, data); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}
