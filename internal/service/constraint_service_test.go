package service

import (
	"context"
	"testing"

	"github.com/storeops/rebalance/internal/constraint"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
	"github.com/storeops/rebalance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededConstraintService(t *testing.T, tenantID string) (*ConstraintService, *memory.ConstraintRepository) {
	t.Helper()
	repo := memory.NewConstraintRepository()
	svc := NewConstraintService(repo, nil)
	_, err := svc.Seed(context.Background(), tenantID)
	require.NoError(t, err)
	return svc, repo
}

func findByKey(t *testing.T, items []domain.ConstraintItem, key string) domain.ConstraintItem {
	t.Helper()
	for _, item := range items {
		if item.Key == key {
			return item
		}
	}
	t.Fatalf("no constraint with key %q", key)
	return domain.ConstraintItem{}
}

func TestSeedCreatesAllRegistryRows(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")

	items, err := svc.List(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, items, len(constraint.Definitions()))

	minCover := findByKey(t, items, constraint.MinCoverWeeks)
	assert.Equal(t, domain.KindNumber, minCover.Value.Kind())
	assert.InDelta(t, 2, minCover.Value.Number.Value, 1e-9)
	assert.True(t, minCover.IsActive)
}

func TestUpdateValueLeavesActiveFlag(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")
	ctx := context.Background()

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	item := findByKey(t, items, constraint.MinCoverWeeks)

	value := domain.NumberOf("weeks", 5)
	updated, err := svc.Update(ctx, "acme", item.ID, domain.ConstraintUpdate{Value: &value})
	require.NoError(t, err)

	assert.InDelta(t, 5, updated.Value.Number.Value, 1e-9)
	assert.True(t, updated.IsActive, "active flag must survive a value-only update")
}

func TestUpdateActiveLeavesValue(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")
	ctx := context.Background()

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	item := findByKey(t, items, constraint.EnableRecalls)

	inactive := false
	updated, err := svc.Update(ctx, "acme", item.ID, domain.ConstraintUpdate{IsActive: &inactive})
	require.NoError(t, err)

	assert.False(t, updated.IsActive)
	assert.True(t, updated.Value.Boolean.Enabled, "value must survive a flag-only update")
}

func TestUpdateRejectsEmptyPatch(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")

	_, err := svc.Update(context.Background(), "acme", 1, domain.ConstraintUpdate{})
	assert.ErrorIs(t, err, ErrInvalidUpdate)
}

func TestUpdateRejectsKindMismatch(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")
	ctx := context.Background()

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	item := findByKey(t, items, constraint.EnableRecalls)

	value := domain.NumberOf("weeks", 3)
	_, err = svc.Update(ctx, "acme", item.ID, domain.ConstraintUpdate{Value: &value})
	assert.ErrorIs(t, err, ErrInvalidUpdate)
}

func TestUpdateRejectsUnitMismatch(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")
	ctx := context.Background()

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	item := findByKey(t, items, constraint.MinCoverWeeks)

	value := domain.NumberOf("days", 14)
	_, err = svc.Update(ctx, "acme", item.ID, domain.ConstraintUpdate{Value: &value})
	assert.ErrorIs(t, err, ErrInvalidUpdate)
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")

	active := true
	_, err := svc.Update(context.Background(), "acme", 9999, domain.ConstraintUpdate{IsActive: &active})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateScopedToTenant(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")
	ctx := context.Background()

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	item := findByKey(t, items, constraint.MinCoverWeeks)

	active := false
	_, err = svc.Update(ctx, "other-tenant", item.ID, domain.ConstraintUpdate{IsActive: &active})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListHidesUnregisteredKeys(t *testing.T) {
	repo := memory.NewConstraintRepository()
	svc := NewConstraintService(repo, nil)
	ctx := context.Background()

	_, err := svc.Seed(ctx, "acme")
	require.NoError(t, err)

	legacy := &domain.ConstraintItem{
		TenantID: "acme",
		Key:      "legacy_retired_knob",
		Value:    domain.NumberOf("weeks", 1),
		IsActive: true,
	}
	require.NoError(t, repo.Upsert(ctx, legacy))

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "legacy_retired_knob", item.Key)
	}
}

func TestParamsReflectOverrides(t *testing.T) {
	svc, _ := seededConstraintService(t, "acme")
	ctx := context.Background()

	items, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	item := findByKey(t, items, constraint.TargetCoverWeeks)

	value := domain.NumberOf("weeks", 6)
	_, err = svc.Update(ctx, "acme", item.ID, domain.ConstraintUpdate{Value: &value})
	require.NoError(t, err)

	params, err := svc.Params(ctx, "acme")
	require.NoError(t, err)
	assert.InDelta(t, 6, params.TargetCoverWeeks, 1e-9)
	assert.InDelta(t, 2, params.MinCoverWeeks, 1e-9)
}
