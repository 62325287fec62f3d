// Package usecase implements the namespaced compute-once-on-miss cache.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/concierge/internal/cache/domain"
	apperrors "github.com/allisson/concierge/internal/errors"
	"github.com/allisson/concierge/internal/outcome"
	"github.com/allisson/concierge/internal/txcontext"
)

// EntryRepository defines cache entry persistence.
type EntryRepository interface {
	// Get returns ErrEntryNotFound when nothing is stored for (namespace, key).
	Get(ctx context.Context, namespace, key string) (*domain.Entry, error)
	// Upsert creates or overwrites an entry.
	Upsert(ctx context.Context, entry *domain.Entry) error
}

// Cache scopes entries to one namespace.
//
// Concurrent Fetch calls for the same key are not mutually exclusive: both may run
// the computation and the last write wins. Only cache idempotent computations.
type Cache struct {
	namespace string
	repo      EntryRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewCache creates a Cache for namespace.
func NewCache(namespace string, repo EntryRepository, logger *slog.Logger) *Cache {
	return &Cache{
		namespace: namespace,
		repo:      repo,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Namespace returns the cache namespace.
func (c *Cache) Namespace() string {
	return c.namespace
}

// Fetch returns the value stored under key, decoding it with codec. On a miss it
// runs compute and, only when compute succeeds, stores the encoded value before
// returning it. A failed computation is returned as is and never stored.
//
// Storage problems degrade to a miss (on read) or to an uncached value (on write);
// they are logged but never turn a successful computation into a failure.
func Fetch[T any](
	ctx context.Context,
	c *Cache,
	key string,
	codec Codec[T],
	compute func(ctx context.Context) outcome.Result[T],
) outcome.Result[T] {
	tc := txcontext.FromContext(ctx)

	entry, err := c.repo.Get(ctx, c.namespace, key)
	switch {
	case err == nil:
		value, decodeErr := codec.Decode(entry.Value)
		if decodeErr == nil {
			tc.Add(txcontext.LabelCacheHit, c.namespace+"/"+key, nil)
			return outcome.Ok(value)
		}
		c.logWarn("failed to decode cached value, recomputing", key, decodeErr)
	case !apperrors.Is(err, domain.ErrEntryNotFound):
		c.logWarn("failed to read cache entry, recomputing", key, err)
	}

	tc.Add(txcontext.LabelCacheMiss, c.namespace+"/"+key, nil)

	result := compute(ctx)
	if !result.Success() {
		return result
	}

	encoded, err := codec.Encode(result.Value())
	if err != nil {
		c.logWarn("failed to encode value, not caching", key, err)
		return result
	}

	if err := c.repo.Upsert(ctx, &domain.Entry{
		Namespace: c.namespace,
		Key:       key,
		Value:     encoded,
		UpdatedAt: c.now(),
	}); err != nil {
		c.logWarn("failed to store cache entry", key, err)
	}

	return result
}

func (c *Cache) logWarn(msg, key string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg,
		slog.String("namespace", c.namespace),
		slog.String("key", key),
		slog.Any("error", err),
	)
}

// Store overwrites key with value regardless of what is currently cached.
// It is used when a cached value is found to be stale by its consumer.
func Store[T any](ctx context.Context, c *Cache, key string, codec Codec[T], value T) error {
	encoded, err := codec.Encode(value)
	if err != nil {
		return err
	}
	return c.repo.Upsert(ctx, &domain.Entry{
		Namespace: c.namespace,
		Key:       key,
		Value:     encoded,
		UpdatedAt: c.now(),
	})
}
