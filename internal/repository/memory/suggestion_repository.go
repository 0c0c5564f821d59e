// internal/repository/memory/suggestion_repository.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

// SuggestionRepository is an in-memory SuggestionRepository.
type SuggestionRepository struct {
	mu          sync.RWMutex
	suggestions map[string]domain.RebalanceSuggestion
}

func NewSuggestionRepository() *SuggestionRepository {
	return &SuggestionRepository{
		suggestions: make(map[string]domain.RebalanceSuggestion),
	}
}

var _ repository.SuggestionRepository = (*SuggestionRepository)(nil)

func (r *SuggestionRepository) List(ctx context.Context, tenantID string, filter domain.SuggestionFilter) ([]domain.RebalanceSuggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.RebalanceSuggestion
	for _, s := range r.suggestions {
		if s.TenantID != tenantID {
			continue
		}
		if filter.RunID != "" && s.RunID != filter.RunID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.TransferType != "" && s.TransferType != filter.TransferType {
			continue
		}
		if filter.FromLocation != "" && s.FromLocation != filter.FromLocation {
			continue
		}
		if filter.ToLocation != "" && s.ToLocation != filter.ToLocation {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FromLocation != out[j].FromLocation {
			return out[i].FromLocation < out[j].FromLocation
		}
		if out[i].FCID != out[j].FCID {
			return out[i].FCID < out[j].FCID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SuggestionRepository) InsertBatch(ctx context.Context, suggestions []*domain.RebalanceSuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, s := range suggestions {
		stored := *s
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		r.suggestions[stored.ID] = stored
	}
	return nil
}

func (r *SuggestionRepository) Transition(ctx context.Context, tenantID, id string, status domain.SuggestionStatus, qty *int) (domain.BatchOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.suggestions[id]
	if !ok || s.TenantID != tenantID {
		return domain.OutcomeMissing, nil
	}
	if s.Status != domain.StatusPending {
		return domain.OutcomeConflict, nil
	}

	s.Status = status
	if qty != nil {
		s.Qty = *qty
	}
	now := time.Now()
	s.DecidedAt = &now
	r.suggestions[id] = s
	return domain.OutcomeApplied, nil
}

// Get returns a stored suggestion by id, for test assertions.
func (r *SuggestionRepository) Get(id string) (domain.RebalanceSuggestion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suggestions[id]
	return s, ok
}
