// internal/constraint/registry.go
package constraint

import (
	"fmt"

	"github.com/storeops/rebalance/internal/domain"
)

// Definition is the fixed metadata for one constraint key: its value kind,
// logical group, and the unit used as the JSON field name for numeric values.
// The registry is compiled in; keys outside it cannot be created or edited.
type Definition struct {
	Key         string
	Kind        domain.ConstraintKind
	Group       domain.ConstraintGroup
	Unit        string
	Default     domain.ConstraintValue
	Description string
}

// Registry keys, grouped the way the configuration surface presents them.
const (
	MinCoverWeeks        = "min_cover_weeks"
	TargetCoverWeeks     = "target_cover_weeks"
	RecallThresholdWeeks = "recall_threshold_weeks"
	MaxTransferPercent   = "max_transfer_percent"
	MinTransferQty       = "min_transfer_qty"
	DeadStockWeeks       = "dead_stock_weeks"

	WeightSalesVelocity = "priority_weight_sales_velocity"
	WeightCoverGap      = "priority_weight_cover_gap"
	WeightStoreTier     = "priority_weight_store_tier"
	UnitValueFallback   = "unit_value_fallback"

	EnableLateral        = "enable_lateral_transfers"
	EnableRecalls        = "enable_recalls"
	KeepSizeRun          = "keep_size_run"
	RespectStoreCapacity = "respect_store_capacity"
)

var definitions = []Definition{
	{MinCoverWeeks, domain.KindNumber, domain.GroupThreshold, "weeks",
		domain.NumberOf("weeks", 2),
		"Stores below this many weeks of cover are eligible to receive stock."},
	{TargetCoverWeeks, domain.KindNumber, domain.GroupThreshold, "weeks",
		domain.NumberOf("weeks", 4),
		"Pushes top a store up to this cover level, never beyond."},
	{RecallThresholdWeeks, domain.KindNumber, domain.GroupThreshold, "weeks",
		domain.NumberOf("weeks", 12),
		"Stores above this cover level become donors for lateral moves or recalls."},
	{MaxTransferPercent, domain.KindNumber, domain.GroupThreshold, "percent",
		domain.NumberOf("percent", 30),
		"Cap on the share of warehouse stock a single pass may move out."},
	{MinTransferQty, domain.KindNumber, domain.GroupThreshold, "units",
		domain.NumberOf("units", 3),
		"Movements below this quantity are suppressed."},
	{DeadStockWeeks, domain.KindNumber, domain.GroupThreshold, "weeks",
		domain.NumberOf("weeks", 26),
		"Zero-velocity stock older than this is flagged as dead stock for recall."},

	{WeightSalesVelocity, domain.KindNumber, domain.GroupAdvanced, "weight",
		domain.NumberOf("weight", 40),
		"V2 priority weight for observed sales velocity."},
	{WeightCoverGap, domain.KindNumber, domain.GroupAdvanced, "weight",
		domain.NumberOf("weight", 40),
		"V2 priority weight for the gap to target cover."},
	{WeightStoreTier, domain.KindNumber, domain.GroupAdvanced, "weight",
		domain.NumberOf("weight", 20),
		"V2 priority weight for the store tier (S > A > B > C)."},
	{UnitValueFallback, domain.KindNumber, domain.GroupAdvanced, "amount",
		domain.NumberOf("amount", 350000),
		"Unit value used in recall summaries when a product has no price on file."},

	{EnableLateral, domain.KindBoolean, domain.GroupToggle, "",
		domain.BoolOf(true),
		"Allow store-to-store transfers before falling back to recalls."},
	{EnableRecalls, domain.KindBoolean, domain.GroupToggle, "",
		domain.BoolOf(true),
		"Allow recalling overstock back to the central warehouse."},
	{KeepSizeRun, domain.KindBoolean, domain.GroupToggle, "",
		domain.BoolOf(true),
		"Never draw a donor below the size-run floor for an FC."},
	{RespectStoreCapacity, domain.KindBoolean, domain.GroupToggle, "",
		domain.BoolOf(false),
		"Honor per-store capacity ceilings when pushing stock."},
}

var byKey = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		m[def.Key] = def
	}
	return m
}()

// Lookup returns the definition for a key.
func Lookup(key string) (Definition, bool) {
	def, ok := byKey[key]
	return def, ok
}

// Definitions returns all registered definitions in presentation order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// ValidateValue checks a proposed value against the metadata for key: the key
// must be registered, the kind must match, and numeric units must agree.
func ValidateValue(key string, value domain.ConstraintValue) error {
	def, ok := byKey[key]
	if !ok {
		return fmt.Errorf("unknown constraint key %q", key)
	}
	if value.IsZero() {
		return fmt.Errorf("constraint %q: empty value", key)
	}
	if got := value.Kind(); got != def.Kind {
		return fmt.Errorf("constraint %q expects a %s value, got %s", key, def.Kind, got)
	}
	if def.Kind == domain.KindNumber && value.Number.Unit != def.Unit {
		return fmt.Errorf("constraint %q expects unit %q, got %q", key, def.Unit, value.Number.Unit)
	}
	return nil
}
