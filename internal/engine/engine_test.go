package engine

import (
	"context"
	"testing"

	"github.com/storeops/rebalance/internal/constraint"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const warehouse = "WH-CENTRAL"

func defaultParams() constraint.Params {
	return constraint.Resolve(nil)
}

func metric(code, fc string, onHand, available int, velocity, cover float64) domain.StoreMetric {
	return domain.StoreMetric{
		StoreCode:      code,
		StoreName:      code,
		Tier:           domain.TierC,
		FCID:           fc,
		OnHand:         onHand,
		Available:      available,
		WeeklyVelocity: velocity,
		WeeksCover:     cover,
	}
}

func TestBaselinePassTopsUpNeediestFirst(t *testing.T) {
	e := New(defaultParams(), warehouse, 2)

	// budget = floor(100 * 30%) = 30; ST-01 needs ceil((4-1)*10) = 30
	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 100, 100, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-1", 10, 10, 10, 1),
		metric("ST-02", "FC-1", 30, 30, 10, 3), // above min cover, not eligible
	}

	proposals, err := e.Run(context.Background(), domain.ModeV1, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	p := proposals[0]
	assert.Equal(t, warehouse, p.FromLocation)
	assert.Equal(t, "ST-01", p.ToLocation)
	assert.Equal(t, 30, p.Qty)
	assert.Equal(t, domain.TransferPush, p.TransferType)
	assert.Contains(t, p.Reason, "V1:")
}

func TestBaselinePassSuppressesSmallTransfers(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	// need = ceil(4 * 0.5) = 2, below min_transfer_qty 3
	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 100, 100, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-1", 0, 0, 0.5, 0),
	}

	proposals, err := e.Run(context.Background(), domain.ModeV1, metrics)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestBaselinePassNoWarehouseRow(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	metrics := []domain.StoreMetric{
		metric("ST-01", "FC-1", 0, 0, 10, 0),
	}

	proposals, err := e.Run(context.Background(), domain.ModeV1, metrics)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestWeightedPassSplitsByScore(t *testing.T) {
	e := New(defaultParams(), warehouse, 2)

	// ST-01: velocityNorm 1, gapNorm 1, tier S => score 1.00
	// ST-02: velocityNorm 0.5, gapNorm 0.5, tier C => score 0.45
	// budget 30: shares floor(30/1.45) = 20 and floor(30*0.45/1.45) = 9
	st1 := metric("ST-01", "FC-1", 0, 0, 10, 0)
	st1.Tier = domain.TierS
	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 100, 100, 0, domain.InfiniteCoverWeeks),
		st1,
		metric("ST-02", "FC-1", 10, 10, 5, 2),
	}

	proposals, err := e.Run(context.Background(), domain.ModeV2, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	assert.Equal(t, "ST-01", proposals[0].ToLocation)
	assert.Equal(t, 20, proposals[0].Qty)
	assert.Equal(t, "ST-02", proposals[1].ToLocation)
	assert.Equal(t, 9, proposals[1].Qty)
	assert.Contains(t, proposals[0].Reason, "V2:")
}

func TestWeightedPassRespectsStoreCapacity(t *testing.T) {
	params := defaultParams()
	params.RespectStoreCapacity = true
	e := New(params, warehouse, 1)

	// single candidate takes the whole budget unless capped at its gap:
	// gap = ceil((4-3)*3) = 3
	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 100, 100, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-1", 9, 9, 3, 3),
	}

	proposals, err := e.Run(context.Background(), domain.ModeV2, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, 3, proposals[0].Qty)
}

func TestModeBothChainsRemainingBudget(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	// budget = floor(200 * 30%) = 60; V1 pushes 30, V2 splits the other 30
	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 200, 200, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-1", 10, 10, 10, 1),
	}

	proposals, err := e.Run(context.Background(), domain.ModeBoth, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	assert.Contains(t, proposals[0].Reason, "V1:")
	assert.Equal(t, 30, proposals[0].Qty)
	assert.Contains(t, proposals[1].Reason, "V2:")
	assert.Equal(t, 30, proposals[1].Qty)
}

func TestRunGroupsPerFC(t *testing.T) {
	e := New(defaultParams(), warehouse, 4)

	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 100, 100, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-1", 10, 10, 10, 1),
		metric(warehouse, "FC-2", 100, 100, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-2", 10, 10, 10, 1),
	}

	proposals, err := e.Run(context.Background(), domain.ModeV1, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	// deterministic FC order regardless of worker scheduling
	assert.Equal(t, "FC-1", proposals[0].FCID)
	assert.Equal(t, "FC-2", proposals[1].FCID)
}

func TestRunCancelledContext(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	metrics := []domain.StoreMetric{
		metric(warehouse, "FC-1", 100, 100, 0, domain.InfiniteCoverWeeks),
		metric("ST-01", "FC-1", 10, 10, 10, 1),
	}

	_, err := e.Run(ctx, domain.ModeV1, metrics)
	assert.ErrorIs(t, err, context.Canceled)
}
