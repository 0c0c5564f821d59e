// internal/repository/memory/constraint_repository.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

// ConstraintRepository is an in-memory ConstraintRepository used by tests and
// the CLI dry-run mode.
type ConstraintRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.ConstraintItem
}

func NewConstraintRepository() *ConstraintRepository {
	return &ConstraintRepository{
		nextID: 1,
		items:  make(map[int64]domain.ConstraintItem),
	}
}

var _ repository.ConstraintRepository = (*ConstraintRepository)(nil)

func (r *ConstraintRepository) List(ctx context.Context, tenantID string) ([]domain.ConstraintItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.ConstraintItem
	for _, item := range r.items {
		if item.TenantID == tenantID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *ConstraintRepository) GetByID(ctx context.Context, tenantID string, id int64) (*domain.ConstraintItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r *ConstraintRepository) Update(ctx context.Context, tenantID string, id int64, update domain.ConstraintUpdate) (*domain.ConstraintItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	if update.Value != nil {
		item.Value = *update.Value
	}
	if update.IsActive != nil {
		item.IsActive = *update.IsActive
	}
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return &item, nil
}

func (r *ConstraintRepository) Upsert(ctx context.Context, item *domain.ConstraintItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.TenantID == item.TenantID && existing.Key == item.Key {
			existing.Description = item.Description
			existing.UpdatedAt = time.Now()
			r.items[id] = existing
			item.ID = id
			return nil
		}
	}

	item.ID = r.nextID
	r.nextID++
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.items[item.ID] = *item
	return nil
}
