// internal/summary/groups.go
package summary

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/storeops/rebalance/internal/domain"
)

// RecallGroup aggregates one source store's recall suggestions.
type RecallGroup struct {
	FromLocation string                       `json:"from_location"`
	Suggestions  []domain.RebalanceSuggestion `json:"suggestions"`
	TotalQty     int                          `json:"total_qty"`
	DistinctFCs  int                          `json:"distinct_fcs"`
	TotalValue   decimal.Decimal              `json:"total_value"`
	ReasonBrief  string                       `json:"reason_brief"`
}

// GroupByFromLocation partitions suggestions by source store: every
// suggestion lands in exactly one group. Estimated value uses the product's
// price when known and fallbackUnitValue otherwise.
func GroupByFromLocation(suggestions []domain.RebalanceSuggestion, fallbackUnitValue decimal.Decimal) []RecallGroup {
	byStore := make(map[string]*RecallGroup)
	var order []string

	for _, s := range suggestions {
		g, ok := byStore[s.FromLocation]
		if !ok {
			g = &RecallGroup{FromLocation: s.FromLocation}
			byStore[s.FromLocation] = g
			order = append(order, s.FromLocation)
		}

		g.Suggestions = append(g.Suggestions, s)
		g.TotalQty += s.Qty

		price := fallbackUnitValue
		if s.UnitPrice.Valid && s.UnitPrice.Decimal.IsPositive() {
			price = s.UnitPrice.Decimal
		}
		g.TotalValue = g.TotalValue.Add(price.Mul(decimal.NewFromInt(int64(s.Qty))))
	}

	sort.Strings(order)
	out := make([]RecallGroup, 0, len(order))
	for _, loc := range order {
		g := byStore[loc]
		fcs := make(map[string]struct{}, len(g.Suggestions))
		for _, s := range g.Suggestions {
			fcs[s.FCID] = struct{}{}
		}
		g.DistinctFCs = len(fcs)
		g.ReasonBrief = SummarizeReasons(g.Suggestions)
		out = append(out, *g)
	}
	return out
}
