// internal/constraint/params.go
package constraint

import "github.com/storeops/rebalance/internal/domain"

// Params is the effective, typed parameter set the engine runs with. It is
// resolved from registry defaults overridden by a tenant's active constraints.
type Params struct {
	MinCoverWeeks        float64
	TargetCoverWeeks     float64
	RecallThresholdWeeks float64
	MaxTransferPercent   float64
	MinTransferQty       int
	DeadStockWeeks       float64

	WeightSalesVelocity float64
	WeightCoverGap      float64
	WeightStoreTier     float64
	UnitValueFallback   float64

	EnableLateral        bool
	EnableRecalls        bool
	KeepSizeRun          bool
	RespectStoreCapacity bool
}

// Resolve folds a tenant's constraint rows over the registry defaults.
// Inactive rows, empty values (NULL in storage), unknown keys, and kind
// mismatches are ignored: the engine always runs with a complete parameter set.
func Resolve(items []domain.ConstraintItem) Params {
	values := make(map[string]domain.ConstraintValue, len(definitions))
	for _, def := range definitions {
		values[def.Key] = def.Default
	}

	for _, item := range items {
		if !item.IsActive || item.Value.IsZero() {
			continue
		}
		def, ok := byKey[item.Key]
		if !ok || item.Value.Kind() != def.Kind {
			continue
		}
		values[item.Key] = item.Value
	}

	num := func(key string) float64 { return values[key].Number.Value }
	flag := func(key string) bool { return values[key].Boolean.Enabled }

	return Params{
		MinCoverWeeks:        num(MinCoverWeeks),
		TargetCoverWeeks:     num(TargetCoverWeeks),
		RecallThresholdWeeks: num(RecallThresholdWeeks),
		MaxTransferPercent:   num(MaxTransferPercent),
		MinTransferQty:       int(num(MinTransferQty)),
		DeadStockWeeks:       num(DeadStockWeeks),
		WeightSalesVelocity:  num(WeightSalesVelocity),
		WeightCoverGap:       num(WeightCoverGap),
		WeightStoreTier:      num(WeightStoreTier),
		UnitValueFallback:    num(UnitValueFallback),
		EnableLateral:        flag(EnableLateral),
		EnableRecalls:        flag(EnableRecalls),
		KeepSizeRun:          flag(KeepSizeRun),
		RespectStoreCapacity: flag(RespectStoreCapacity),
	}
}
