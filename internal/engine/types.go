// internal/engine/types.go
package engine

import (
	"math"
	"sort"

	"github.com/storeops/rebalance/internal/domain"
)

// Proposal is one movement the engine wants to make, before it is persisted
// as a suggestion.
type Proposal struct {
	FCID           string
	FromLocation   string
	ToLocation     string
	Qty            int
	TransferType   domain.TransferType
	Reason         string
	FromWeeksCover float64
}

// fcGroup is the per-FC view the passes operate on: the warehouse row (if
// any) plus every store row for that FC.
type fcGroup struct {
	fc        string
	warehouse *domain.StoreMetric
	stores    []domain.StoreMetric
}

// groupByFC splits the snapshot into per-FC groups, using warehouseLocation
// (matched against store code) to separate the warehouse row.
func groupByFC(metrics []domain.StoreMetric, warehouseLocation string) []fcGroup {
	byFC := make(map[string]*fcGroup)
	var order []string

	for _, m := range metrics {
		g, ok := byFC[m.FCID]
		if !ok {
			g = &fcGroup{fc: m.FCID}
			byFC[m.FCID] = g
			order = append(order, m.FCID)
		}
		if m.StoreCode == warehouseLocation {
			wh := m
			g.warehouse = &wh
			continue
		}
		g.stores = append(g.stores, m)
	}

	sort.Strings(order)
	out := make([]fcGroup, 0, len(order))
	for _, fc := range order {
		g := byFC[fc]
		sort.Slice(g.stores, func(i, j int) bool {
			return g.stores[i].StoreCode < g.stores[j].StoreCode
		})
		out = append(out, *g)
	}
	return out
}

// coverWeeks caps the sentinel so arithmetic stays sane.
func coverWeeks(m domain.StoreMetric) float64 {
	if m.WeeksCover >= domain.InfiniteCoverWeeks {
		return domain.InfiniteCoverWeeks
	}
	return m.WeeksCover
}

// unitsForWeeks converts a cover gap to whole units at the store's velocity.
func unitsForWeeks(weeks, weeklyVelocity float64) int {
	if weeks <= 0 || weeklyVelocity <= 0 {
		return 0
	}
	return int(math.Ceil(weeks * weeklyVelocity))
}

func tierScore(tier domain.StoreTier) float64 {
	switch tier {
	case domain.TierS:
		return 1.0
	case domain.TierA:
		return 0.75
	case domain.TierB:
		return 0.5
	default:
		return 0.25
	}
}
