// internal/engine/tiers.go
package engine

import (
	"math"
	"sort"

	"github.com/storeops/rebalance/internal/domain"
)

// RecalcTiers ranks stores by aggregate weekly velocity and splits the
// ranking into S/A/B/C bands: top 10%, next 20%, next 40%, rest. Every store
// gets a tier; ties rank by store id for determinism.
func RecalcTiers(summaries []domain.StoreSummary) map[int64]domain.StoreTier {
	if len(summaries) == 0 {
		return nil
	}

	ranked := make([]domain.StoreSummary, len(summaries))
	copy(ranked, summaries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].WeeklyVelocity != ranked[j].WeeklyVelocity {
			return ranked[i].WeeklyVelocity > ranked[j].WeeklyVelocity
		}
		return ranked[i].StoreID < ranked[j].StoreID
	})

	n := len(ranked)
	sCut := int(math.Ceil(float64(n) * 0.10))
	aCut := sCut + int(math.Ceil(float64(n)*0.20))
	bCut := aCut + int(math.Ceil(float64(n)*0.40))

	tiers := make(map[int64]domain.StoreTier, n)
	for i, s := range ranked {
		switch {
		case i < sCut:
			tiers[s.StoreID] = domain.TierS
		case i < aCut:
			tiers[s.StoreID] = domain.TierA
		case i < bCut:
			tiers[s.StoreID] = domain.TierB
		default:
			tiers[s.StoreID] = domain.TierC
		}
	}
	return tiers
}
