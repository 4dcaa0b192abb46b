package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

// Cache is the subset of a key/value store the stock cache needs. An empty
// value with a nil error is a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

const (
	cachedInStock    = "1"
	cachedOutOfStock = "0"
)

type cachedChecker struct {
	next   Checker
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// Cached answers from cache where it can and asks next only for the codes it
// has no fresh entry for. Codes next does not report are not cached.
func Cached(next Checker, cache Cache, ttl time.Duration, logger *slog.Logger) Checker {
	return &cachedChecker{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(skuCode string) string {
	return fmt.Sprintf("orders:inventory:%s", skuCode)
}

func (c *cachedChecker) CheckStock(ctx context.Context, skuCodes []string) ([]domain.InventoryAvailability, error) {
	availability := make([]domain.InventoryAvailability, 0, len(skuCodes))
	var misses []string

	for _, code := range skuCodes {
		value, err := c.cache.Get(ctx, cacheKey(code))
		if err != nil {
			c.logger.WarnContext(ctx, "stock cache read failed", "error", err, "sku_code", code)
		}
		switch value {
		case cachedInStock:
			availability = append(availability, domain.InventoryAvailability{SkuCode: code, InStock: true})
		case cachedOutOfStock:
			availability = append(availability, domain.InventoryAvailability{SkuCode: code, InStock: false})
		default:
			misses = append(misses, code)
		}
	}

	if len(misses) == 0 {
		return availability, nil
	}

	fetched, err := c.next.CheckStock(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, a := range fetched {
		value := cachedOutOfStock
		if a.InStock {
			value = cachedInStock
		}
		if err := c.cache.Set(ctx, cacheKey(a.SkuCode), value, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "stock cache write failed", "error", err, "sku_code", a.SkuCode)
		}
	}

	return append(availability, fetched...), nil
}
