package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var (
	_ port.CategoryOptionsLister      = (*CategoryOptionsCache)(nil)
	_ port.CategoryOptionsInvalidator = (*CategoryOptionsCache)(nil)
)

const (
	DefaultTTL = 5 * time.Minute

	categoryOptionsKey = "ecom-admin:category-options:v1"
)

// RedisClient is the subset of the go-redis client the cache uses.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

type categoryOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryOptionsCache serves the product category filter options from
// Redis and falls through to the API on a miss. Redis failures are logged
// and never fail the call.
type CategoryOptionsCache struct {
	client   RedisClient
	upstream port.CategoryOptionsLister
	ttl      time.Duration
}

func NewCategoryOptionsCache(
	client RedisClient, upstream port.CategoryOptionsLister, ttl time.Duration,
) *CategoryOptionsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CategoryOptionsCache{client: client, upstream: upstream, ttl: ttl}
}

// NewRedisClient opens and pings a client for addr.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	const op = "cache.NewRedisClient"

	c := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (c *CategoryOptionsCache) ActiveCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	const op = "CategoryOptionsCache.ActiveCategories"
	log := slog.With("op", op)

	raw, err := c.client.Get(ctx, categoryOptionsKey).Bytes()
	switch {
	case err == nil:
		var opts []categoryOption
		if err := json.Unmarshal(raw, &opts); err == nil {
			return toRefs(opts), nil
		}
		log.Warn("dropping malformed cache entry")
	case !errors.Is(err, redis.Nil):
		log.Warn("cache read failed", "err", err)
	}

	refs, err := c.upstream.ActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts := make([]categoryOption, len(refs))
	for i, r := range refs {
		opts[i] = categoryOption{ID: r.ID, Name: r.Name}
	}
	data, err := json.Marshal(opts)
	if err == nil {
		err = c.client.Set(ctx, categoryOptionsKey, data, c.ttl).Err()
	}
	if err != nil {
		log.Warn("cache write failed", "err", err)
	}
	return refs, nil
}

// InvalidateCategoryOptions drops the cached options. It runs after every
// successful category mutation.
func (c *CategoryOptionsCache) InvalidateCategoryOptions(ctx context.Context) error {
	const op = "CategoryOptionsCache.InvalidateCategoryOptions"

	if err := c.client.Del(ctx, categoryOptionsKey).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *CategoryOptionsCache) Close() {
	const op = "CategoryOptionsCache.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")
	if err := c.client.Close(); err != nil {
		log.Error("failed to close redis client", "err", err)
		return
	}
	log.Info("redis client is closed")
}

func toRefs(opts []categoryOption) []domain.CategoryRef {
	refs := make([]domain.CategoryRef, len(opts))
	for i, o := range opts {
		refs[i] = domain.CategoryRef{ID: o.ID, Name: o.Name}
	}
	return refs
}
