// internal/cache/constraint_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storeops/rebalance/internal/config"
	"github.com/storeops/rebalance/internal/domain"
)

const constraintListKeyPrefix = "constraints:list"

// ConstraintCache caches a tenant's full constraint list. Every successful
// update invalidates the tenant entry.
type ConstraintCache interface {
	GetList(ctx context.Context, tenantID string) ([]domain.ConstraintItem, bool, error)
	SetList(ctx context.Context, tenantID string, items []domain.ConstraintItem) error
	Invalidate(ctx context.Context, tenantID string) error
}

type redisConstraintCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopConstraintCache struct{}

func NewConstraintCache(cfg config.CacheConfig) (ConstraintCache, error) {
	if !cfg.Enabled {
		return &noopConstraintCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisConstraintCache{client: client, ttl: ttl}, nil
}

func NewNoopConstraintCache() ConstraintCache {
	return &noopConstraintCache{}
}

func constraintListKey(tenantID string) string {
	return fmt.Sprintf("%s:%s", constraintListKeyPrefix, tenantID)
}

func (c *redisConstraintCache) GetList(ctx context.Context, tenantID string) ([]domain.ConstraintItem, bool, error) {
	payload, err := c.client.Get(ctx, constraintListKey(tenantID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.ConstraintItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode constraint list cache: %w", err)
	}
	return items, true, nil
}

func (c *redisConstraintCache) SetList(ctx context.Context, tenantID string, items []domain.ConstraintItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode constraint list cache: %w", err)
	}
	if err := c.client.Set(ctx, constraintListKey(tenantID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisConstraintCache) Invalidate(ctx context.Context, tenantID string) error {
	return c.client.Del(ctx, constraintListKey(tenantID)).Err()
}

func (n *noopConstraintCache) GetList(ctx context.Context, tenantID string) ([]domain.ConstraintItem, bool, error) {
	return nil, false, nil
}

func (n *noopConstraintCache) SetList(ctx context.Context, tenantID string, items []domain.ConstraintItem) error {
	return nil
}

func (n *noopConstraintCache) Invalidate(ctx context.Context, tenantID string) error {
	return nil
}
