package engine

import (
	"context"
	"testing"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebalanceLateralThenRecall(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	// donor: cover 20 > recall threshold 12, keep = ceil(4*1) = 4, surplus 16
	// receiver: cover 1 < min 2, need = ceil((4-1)*2) = 6
	// => lateral 6 to the receiver, recall the remaining 10
	metrics := []domain.StoreMetric{
		metric("ST-DONOR", "FC-1", 20, 20, 1, 20),
		metric("ST-NEEDY", "FC-1", 2, 2, 2, 1),
		metric("ST-OK", "FC-1", 12, 12, 3, 4),
	}

	proposals, err := e.Run(context.Background(), domain.ModeRebalance, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	lateral := proposals[0]
	assert.Equal(t, domain.TransferLateral, lateral.TransferType)
	assert.Equal(t, "ST-DONOR", lateral.FromLocation)
	assert.Equal(t, "ST-NEEDY", lateral.ToLocation)
	assert.Equal(t, 6, lateral.Qty)
	assert.Contains(t, lateral.Reason, "DOC cao")

	recall := proposals[1]
	assert.Equal(t, domain.TransferRecall, recall.TransferType)
	assert.Equal(t, "ST-DONOR", recall.FromLocation)
	assert.Equal(t, warehouse, recall.ToLocation)
	assert.Equal(t, 10, recall.Qty)
	assert.Contains(t, recall.Reason, "thu hồi về kho tổng")
}

func TestRebalanceDeadStockRecalledOutright(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	// zero velocity, cover at the sentinel: dead stock skips lateral moves
	metrics := []domain.StoreMetric{
		metric("ST-DEAD", "FC-1", 5, 5, 0, domain.InfiniteCoverWeeks),
		metric("ST-NEEDY", "FC-1", 2, 2, 2, 1),
	}

	proposals, err := e.Run(context.Background(), domain.ModeRebalance, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	p := proposals[0]
	assert.Equal(t, domain.TransferRecall, p.TransferType)
	assert.Equal(t, "ST-DEAD", p.FromLocation)
	assert.Equal(t, 5, p.Qty)
	assert.Contains(t, p.Reason, "Dead stock")
}

func TestRebalanceLateralDisabled(t *testing.T) {
	params := defaultParams()
	params.EnableLateral = false
	e := New(params, warehouse, 1)

	metrics := []domain.StoreMetric{
		metric("ST-DONOR", "FC-1", 20, 20, 1, 20),
		metric("ST-NEEDY", "FC-1", 2, 2, 2, 1),
	}

	proposals, err := e.Run(context.Background(), domain.ModeRebalance, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, domain.TransferRecall, proposals[0].TransferType)
	assert.Equal(t, 16, proposals[0].Qty)
}

func TestRebalanceRecallsDisabled(t *testing.T) {
	params := defaultParams()
	params.EnableRecalls = false
	e := New(params, warehouse, 1)

	metrics := []domain.StoreMetric{
		metric("ST-DONOR", "FC-1", 20, 20, 1, 20),
		metric("ST-NEEDY", "FC-1", 2, 2, 2, 1),
	}

	proposals, err := e.Run(context.Background(), domain.ModeRebalance, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, domain.TransferLateral, proposals[0].TransferType)
	assert.Equal(t, 6, proposals[0].Qty)
}

func TestRebalanceKeepSizeRunFloor(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	// keep = ceil(4*0.25) = 1, raised to the size-run floor of 2 => surplus 6
	metrics := []domain.StoreMetric{
		metric("ST-SLOW", "FC-1", 8, 8, 0.25, 32),
	}

	proposals, err := e.Run(context.Background(), domain.ModeRebalance, metrics)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, 6, proposals[0].Qty)
}

func TestRebalanceSmallSurplusSuppressed(t *testing.T) {
	e := New(defaultParams(), warehouse, 1)

	// surplus = 6 - ceil(4*1) = 2, below min_transfer_qty 3
	metrics := []domain.StoreMetric{
		metric("ST-DONOR", "FC-1", 6, 6, 1, 13),
	}

	proposals, err := e.Run(context.Background(), domain.ModeRebalance, metrics)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}
