// internal/service/constraint_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/storeops/rebalance/internal/cache"
	"github.com/storeops/rebalance/internal/constraint"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

// ErrInvalidUpdate marks a constraint update rejected at the boundary:
// unknown key, kind mismatch, wrong unit, or an empty patch.
var ErrInvalidUpdate = errors.New("invalid constraint update")

type ConstraintService struct {
	repo  repository.ConstraintRepository
	cache cache.ConstraintCache
}

func NewConstraintService(repo repository.ConstraintRepository, cacheImpl cache.ConstraintCache) *ConstraintService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopConstraintCache()
	}
	return &ConstraintService{repo: repo, cache: cacheImpl}
}

func (s *ConstraintService) List(ctx context.Context, tenantID string) ([]domain.ConstraintItem, error) {
	if items, ok, err := s.cache.GetList(ctx, tenantID); err == nil && ok {
		return items, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("constraints: cache get failed")
	}

	items, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Rows with keys that fell out of the registry are not editable and are
	// not surfaced.
	visible := make([]domain.ConstraintItem, 0, len(items))
	for _, item := range items {
		if _, ok := constraint.Lookup(item.Key); ok {
			visible = append(visible, item)
		}
	}

	if err := s.cache.SetList(ctx, tenantID, visible); err != nil {
		log.Warn().Err(err).Msg("constraints: cache set failed")
	}
	return visible, nil
}

// Update applies a partial update after checking the proposed value against
// the key's registered metadata.
func (s *ConstraintService) Update(ctx context.Context, tenantID string, id int64, update domain.ConstraintUpdate) (*domain.ConstraintItem, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidUpdate)
	}

	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if _, ok := constraint.Lookup(current.Key); !ok {
		return nil, fmt.Errorf("%w: key %q is not registered", ErrInvalidUpdate, current.Key)
	}
	if update.Value != nil {
		if err := constraint.ValidateValue(current.Key, *update.Value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
		}
	}

	updated, err := s.repo.Update(ctx, tenantID, id, update)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		log.Warn().Err(err).Msg("constraints: cache invalidate failed")
	}
	return updated, nil
}

// Seed inserts any missing registry rows for a tenant with their defaults.
// Existing rows keep their values and active flags.
func (s *ConstraintService) Seed(ctx context.Context, tenantID string) (int, error) {
	seeded := 0
	for _, def := range constraint.Definitions() {
		item := &domain.ConstraintItem{
			TenantID:    tenantID,
			Key:         def.Key,
			Value:       def.Default,
			IsActive:    true,
			Description: def.Description,
		}
		if err := s.repo.Upsert(ctx, item); err != nil {
			return seeded, err
		}
		seeded++
	}

	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		log.Warn().Err(err).Msg("constraints: cache invalidate failed")
	}
	return seeded, nil
}

// Params resolves the tenant's effective engine parameters.
func (s *ConstraintService) Params(ctx context.Context, tenantID string) (constraint.Params, error) {
	items, err := s.List(ctx, tenantID)
	if err != nil {
		return constraint.Params{}, err
	}
	return constraint.Resolve(items), nil
}
