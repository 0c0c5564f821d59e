// internal/service/suggestion_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
	"github.com/storeops/rebalance/internal/summary"
)

type SuggestionService struct {
	repo        repository.SuggestionRepository
	constraints *ConstraintService
}

func NewSuggestionService(repo repository.SuggestionRepository, constraints *ConstraintService) *SuggestionService {
	return &SuggestionService{repo: repo, constraints: constraints}
}

func (s *SuggestionService) List(ctx context.Context, tenantID string, filter domain.SuggestionFilter) ([]domain.RebalanceSuggestion, error) {
	return s.repo.List(ctx, tenantID, filter)
}

// Approve transitions each pending suggestion to approved. editedQty, keyed
// by suggestion id, overrides the suggested quantity for that id. Each id
// gets its own result; one failed row does not abort the rest.
func (s *SuggestionService) Approve(ctx context.Context, tenantID string, ids []string, editedQty map[string]int) ([]domain.BatchResult, error) {
	return s.transitionAll(ctx, tenantID, ids, domain.StatusApproved, editedQty)
}

// Reject transitions each pending suggestion to rejected. No payload beyond
// the id set.
func (s *SuggestionService) Reject(ctx context.Context, tenantID string, ids []string) ([]domain.BatchResult, error) {
	return s.transitionAll(ctx, tenantID, ids, domain.StatusRejected, nil)
}

func (s *SuggestionService) transitionAll(ctx context.Context, tenantID string, ids []string, status domain.SuggestionStatus, editedQty map[string]int) ([]domain.BatchResult, error) {
	results := make([]domain.BatchResult, 0, len(ids))
	for _, id := range ids {
		var qty *int
		if editedQty != nil {
			if edited, ok := editedQty[id]; ok {
				q := edited
				qty = &q
			}
		}

		outcome, err := s.repo.Transition(ctx, tenantID, id, status, qty)
		if err != nil {
			return nil, err
		}
		if outcome != domain.OutcomeApplied {
			log.Warn().
				Str("suggestion_id", id).
				Str("status", string(status)).
				Str("outcome", string(outcome)).
				Msg("suggestion transition skipped")
		}
		results = append(results, domain.BatchResult{ID: id, Outcome: outcome})
	}
	return results, nil
}

// RecallGroups groups a run's pending recall suggestions by source store.
func (s *SuggestionService) RecallGroups(ctx context.Context, tenantID, runID string) ([]summary.RecallGroup, error) {
	suggestions, err := s.repo.List(ctx, tenantID, domain.SuggestionFilter{
		RunID:        runID,
		Status:       domain.StatusPending,
		TransferType: domain.TransferRecall,
	})
	if err != nil {
		return nil, err
	}

	fallback, err := s.unitValueFallback(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return summary.GroupByFromLocation(suggestions, fallback), nil
}

// ReasonSummary classifies a run's suggestion reasons and renders the
// top-three summary line.
func (s *SuggestionService) ReasonSummary(ctx context.Context, tenantID, runID string) (string, []summary.ReasonCount, error) {
	suggestions, err := s.repo.List(ctx, tenantID, domain.SuggestionFilter{RunID: runID})
	if err != nil {
		return "", nil, err
	}
	return summary.SummarizeReasons(suggestions), summary.CountReasons(suggestions), nil
}

func (s *SuggestionService) unitValueFallback(ctx context.Context, tenantID string) (decimal.Decimal, error) {
	params, err := s.constraints.Params(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(params.UnitValueFallback), nil
}
