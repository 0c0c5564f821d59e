// internal/service/engine_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/storeops/rebalance/internal/cache"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/engine"
	"github.com/storeops/rebalance/internal/repository"
)

const snapshotPageSize = 500

// ErrUnsupportedMode marks an allocation request with a mode the engine does
// not run.
var ErrUnsupportedMode = errors.New("unsupported allocation mode")

// EngineService orchestrates engine runs: it resolves parameters, loads the
// metric snapshot, executes the passes, and persists the resulting batch.
type EngineService struct {
	constraints       *ConstraintService
	suggestions       repository.SuggestionRepository
	runs              repository.RunRepository
	metrics           repository.StoreMetricsRepository
	dashboard         cache.DashboardCache
	warehouseLocation string
	workerCount       int
}

func NewEngineService(
	constraints *ConstraintService,
	suggestions repository.SuggestionRepository,
	runs repository.RunRepository,
	metrics repository.StoreMetricsRepository,
	dashboard cache.DashboardCache,
	warehouseLocation string,
	workerCount int,
) *EngineService {
	if dashboard == nil {
		dashboard = cache.NewNoopDashboardCache()
	}
	return &EngineService{
		constraints:       constraints,
		suggestions:       suggestions,
		runs:              runs,
		metrics:           metrics,
		dashboard:         dashboard,
		warehouseLocation: warehouseLocation,
		workerCount:       workerCount,
	}
}

// RunAllocation executes the push passes (V1, V2, or both).
func (s *EngineService) RunAllocation(ctx context.Context, tenantID string, mode domain.EngineMode) (*domain.RunReport, error) {
	switch mode {
	case domain.ModeV1, domain.ModeV2, domain.ModeBoth:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMode, mode)
	}
	return s.execute(ctx, tenantID, mode)
}

// RunRebalance executes the lateral/recall pass.
func (s *EngineService) RunRebalance(ctx context.Context, tenantID string) (*domain.RunReport, error) {
	return s.execute(ctx, tenantID, domain.ModeRebalance)
}

func (s *EngineService) execute(ctx context.Context, tenantID string, mode domain.EngineMode) (*domain.RunReport, error) {
	run := &domain.RebalanceRun{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Mode:        mode,
		Status:      domain.RunRunning,
		TriggeredAt: time.Now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	report, err := s.computeAndStore(ctx, run)
	now := time.Now()
	run.CompletedAt = &now
	if err != nil {
		run.Status = domain.RunFailed
		run.ErrorMessage = err.Error()
		if finishErr := s.runs.Finish(ctx, run); finishErr != nil {
			log.Error().Err(finishErr).Str("run_id", run.ID).Msg("failed to mark run failed")
		}
		return nil, err
	}

	run.Status = domain.RunCompleted
	run.SuggestionsCreated = report.SuggestionsCreated
	if err := s.runs.Finish(ctx, run); err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", run.ID).
		Str("mode", string(mode)).
		Int("suggestions", report.SuggestionsCreated).
		Msg("engine run completed")
	return report, nil
}

func (s *EngineService) computeAndStore(ctx context.Context, run *domain.RebalanceRun) (*domain.RunReport, error) {
	params, err := s.constraints.Params(ctx, run.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve params: %w", err)
	}

	snapshot, err := s.loadSnapshot(ctx, run.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics snapshot: %w", err)
	}

	eng := engine.New(params, s.warehouseLocation, s.workerCount)
	proposals, err := eng.Run(ctx, run.Mode, snapshot)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*domain.RebalanceSuggestion, 0, len(proposals))
	for _, p := range proposals {
		suggestions = append(suggestions, &domain.RebalanceSuggestion{
			ID:             uuid.NewString(),
			RunID:          run.ID,
			TenantID:       run.TenantID,
			FCID:           p.FCID,
			FromLocation:   p.FromLocation,
			ToLocation:     p.ToLocation,
			Qty:            p.Qty,
			TransferType:   p.TransferType,
			Status:         domain.StatusPending,
			Reason:         p.Reason,
			FromWeeksCover: p.FromWeeksCover,
		})
	}
	if err := s.suggestions.InsertBatch(ctx, suggestions); err != nil {
		return nil, fmt.Errorf("failed to store suggestions: %w", err)
	}

	return &domain.RunReport{RunID: run.ID, SuggestionsCreated: len(suggestions)}, nil
}

func (s *EngineService) loadSnapshot(ctx context.Context, tenantID string) ([]domain.StoreMetric, error) {
	var all []domain.StoreMetric
	for page := 1; ; page++ {
		metrics, total, err := s.metrics.ListMetrics(ctx, tenantID, domain.MetricsFilter{
			Page:     page,
			PageSize: snapshotPageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, metrics...)
		if len(metrics) < snapshotPageSize || len(all) >= total {
			break
		}
	}
	return all, nil
}

// RecalcTiers reranks stores into S/A/B/C from the current summaries.
func (s *EngineService) RecalcTiers(ctx context.Context, tenantID string) (*domain.TierReport, error) {
	summaries, err := s.metrics.StoreSummaries(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tiers := engine.RecalcTiers(summaries)
	changes := 0
	if len(tiers) > 0 {
		changes, err = s.metrics.UpdateTiers(ctx, tenantID, tiers)
		if err != nil {
			return nil, err
		}
	}
	if changes > 0 {
		// The cached dashboard embeds store tiers.
		if err := s.dashboard.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("dashboard cache invalidate failed")
		}
	}

	log.Info().
		Int("total_stores", len(summaries)).
		Int("tier_changes", changes).
		Msg("store tiers recalculated")
	return &domain.TierReport{TotalStores: len(summaries), TierChanges: changes}, nil
}

// Runs lists recent engine runs for a tenant.
func (s *EngineService) Runs(ctx context.Context, tenantID string, limit int) ([]domain.RebalanceRun, error) {
	return s.runs.List(ctx, tenantID, limit)
}

// Run fetches one run by id.
func (s *EngineService) Run(ctx context.Context, tenantID, id string) (*domain.RebalanceRun, error) {
	return s.runs.GetByID(ctx, tenantID, id)
}
