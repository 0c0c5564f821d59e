package constraint

import (
	"testing"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownAndUnknownKeys(t *testing.T) {
	def, ok := Lookup(MinCoverWeeks)
	require.True(t, ok)
	assert.Equal(t, domain.KindNumber, def.Kind)
	assert.Equal(t, domain.GroupThreshold, def.Group)
	assert.Equal(t, "weeks", def.Unit)

	_, ok = Lookup("made_up_key")
	assert.False(t, ok)
}

func TestEveryDefinitionHasMatchingDefault(t *testing.T) {
	for _, def := range Definitions() {
		assert.Equal(t, def.Kind, def.Default.Kind(), "default kind mismatch for %s", def.Key)
		if def.Kind == domain.KindNumber {
			require.NotNil(t, def.Default.Number, "numeric default missing for %s", def.Key)
			assert.Equal(t, def.Unit, def.Default.Number.Unit, "unit mismatch for %s", def.Key)
		}
	}
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue(MinCoverWeeks, domain.NumberOf("weeks", 3)))
	assert.NoError(t, ValidateValue(EnableRecalls, domain.BoolOf(false)))

	// kind mismatch
	assert.Error(t, ValidateValue(MinCoverWeeks, domain.BoolOf(true)))
	assert.Error(t, ValidateValue(EnableRecalls, domain.NumberOf("weeks", 1)))

	// wrong unit on a numeric key
	assert.Error(t, ValidateValue(MinCoverWeeks, domain.NumberOf("days", 14)))

	// unknown key and empty value
	assert.Error(t, ValidateValue("made_up_key", domain.NumberOf("weeks", 1)))
	assert.Error(t, ValidateValue(MinCoverWeeks, domain.ConstraintValue{}))
}

func TestResolveAppliesActiveOverridesOnly(t *testing.T) {
	items := []domain.ConstraintItem{
		{Key: MinCoverWeeks, Value: domain.NumberOf("weeks", 5), IsActive: true},
		{Key: TargetCoverWeeks, Value: domain.NumberOf("weeks", 10), IsActive: false},
		{Key: EnableRecalls, Value: domain.BoolOf(false), IsActive: true},
		{Key: "made_up_key", Value: domain.NumberOf("weeks", 99), IsActive: true},
		// kind drift in storage is ignored, the default wins
		{Key: MaxTransferPercent, Value: domain.BoolOf(true), IsActive: true},
		// a NULL constraint_value scans to the zero union; the default wins
		{Key: DeadStockWeeks, Value: domain.ConstraintValue{}, IsActive: true},
	}

	params := Resolve(items)

	assert.Equal(t, 5.0, params.MinCoverWeeks)
	assert.Equal(t, 4.0, params.TargetCoverWeeks, "inactive override must not apply")
	assert.False(t, params.EnableRecalls)
	assert.Equal(t, 30.0, params.MaxTransferPercent, "kind drift falls back to default")
	assert.Equal(t, 26.0, params.DeadStockWeeks, "empty value falls back to default")
	assert.True(t, params.EnableLateral)
	assert.Equal(t, 350000.0, params.UnitValueFallback)
}
