// internal/cache/dashboard_cache.go
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

const dashboardKeyPrefix = "metrics:dashboard"

// DashboardCache caches the per-store summary aggregation.
type DashboardCache interface {
	GetSummaries(ctx context.Context, tenantID string) ([]domain.StoreSummary, bool, error)
	SetSummaries(ctx context.Context, tenantID string, summaries []domain.StoreSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func dashboardKey(tenantID string) string {
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, tenantID)
}

func (c *redisDashboardCache) GetSummaries(ctx context.Context, tenantID string) ([]domain.StoreSummary, bool, error) {
	payload, err := c.client.Get(ctx, dashboardKey(tenantID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.StoreSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode dashboard cache: %w", err)
	}
	return summaries, true, nil
}

func (c *redisDashboardCache) SetSummaries(ctx context.Context, tenantID string, summaries []domain.StoreSummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(tenantID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardKeyPrefix, scanBatchSize)
}

func (n *noopDashboardCache) GetSummaries(ctx context.Context, tenantID string) ([]domain.StoreSummary, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetSummaries(ctx context.Context, tenantID string, summaries []domain.StoreSummary) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}
