// internal/service/metrics_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/storeops/rebalance/internal/cache"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

type MetricsService struct {
	repo  repository.StoreMetricsRepository
	cache cache.DashboardCache
}

func NewMetricsService(repo repository.StoreMetricsRepository, cacheImpl cache.DashboardCache) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &MetricsService{repo: repo, cache: cacheImpl}
}

func (s *MetricsService) Stores(ctx context.Context, tenantID string) ([]domain.Store, error) {
	return s.repo.ListStores(ctx, tenantID)
}

func (s *MetricsService) Metrics(ctx context.Context, tenantID string, filter domain.MetricsFilter) ([]domain.StoreMetric, int, error) {
	return s.repo.ListMetrics(ctx, tenantID, filter)
}

// Dashboard serves the per-store summary, read-through cached.
func (s *MetricsService) Dashboard(ctx context.Context, tenantID string) ([]domain.StoreSummary, error) {
	if summaries, ok, err := s.cache.GetSummaries(ctx, tenantID); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("metrics: cache get failed")
	}

	summaries, err := s.repo.StoreSummaries(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = make([]domain.StoreSummary, 0)
	}

	if err := s.cache.SetSummaries(ctx, tenantID, summaries); err != nil {
		log.Warn().Err(err).Msg("metrics: cache set failed")
	}
	return summaries, nil
}
