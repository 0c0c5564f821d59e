package engine

import (
	"testing"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalcTiersBands(t *testing.T) {
	// ten stores, velocity descending with store id:
	// cuts at ceil(10*.1)=1, +ceil(10*.2)=2, +ceil(10*.4)=4 => 1 S, 2 A, 4 B, 3 C
	summaries := make([]domain.StoreSummary, 0, 10)
	for i := 1; i <= 10; i++ {
		summaries = append(summaries, domain.StoreSummary{
			StoreID:        int64(i),
			WeeklyVelocity: float64(11 - i),
		})
	}

	tiers := RecalcTiers(summaries)
	require.Len(t, tiers, 10)

	assert.Equal(t, domain.TierS, tiers[1])
	assert.Equal(t, domain.TierA, tiers[2])
	assert.Equal(t, domain.TierA, tiers[3])
	for id := int64(4); id <= 7; id++ {
		assert.Equal(t, domain.TierB, tiers[id], "store %d", id)
	}
	for id := int64(8); id <= 10; id++ {
		assert.Equal(t, domain.TierC, tiers[id], "store %d", id)
	}
}

func TestRecalcTiersTieBreaksByStoreID(t *testing.T) {
	summaries := []domain.StoreSummary{
		{StoreID: 2, WeeklyVelocity: 5},
		{StoreID: 1, WeeklyVelocity: 5},
	}

	tiers := RecalcTiers(summaries)
	assert.Equal(t, domain.TierS, tiers[1])
	assert.Equal(t, domain.TierA, tiers[2])
}

func TestRecalcTiersSingleStore(t *testing.T) {
	tiers := RecalcTiers([]domain.StoreSummary{{StoreID: 7, WeeklyVelocity: 1}})
	assert.Equal(t, domain.TierS, tiers[7])
}

func TestRecalcTiersEmpty(t *testing.T) {
	assert.Nil(t, RecalcTiers(nil))
}
