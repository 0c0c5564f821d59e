// internal/repository/memory/run_repository.go
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

// RunRepository is an in-memory RunRepository.
type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]domain.RebalanceRun
}

func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[string]domain.RebalanceRun)}
}

var _ repository.RunRepository = (*RunRepository)(nil)

func (r *RunRepository) Create(ctx context.Context, run *domain.RebalanceRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *RunRepository) Finish(ctx context.Context, run *domain.RebalanceRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *RunRepository) List(ctx context.Context, tenantID string, limit int) ([]domain.RebalanceRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.RebalanceRun
	for _, run := range r.runs {
		if run.TenantID == tenantID {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggeredAt.After(out[j].TriggeredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RunRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.RebalanceRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok || run.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &run, nil
}
