package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintValueParsesNumericPayload(t *testing.T) {
	var v ConstraintValue
	require.NoError(t, json.Unmarshal([]byte(`{"weeks": 2}`), &v))

	assert.Equal(t, KindNumber, v.Kind())
	require.NotNil(t, v.Number)
	assert.Equal(t, "weeks", v.Number.Unit)
	assert.Equal(t, 2.0, v.Number.Value)
	assert.Nil(t, v.Boolean)
}

func TestConstraintValueParsesBooleanPayload(t *testing.T) {
	var v ConstraintValue
	require.NoError(t, json.Unmarshal([]byte(`{"enabled": true}`), &v))

	assert.Equal(t, KindBoolean, v.Kind())
	require.NotNil(t, v.Boolean)
	assert.True(t, v.Boolean.Enabled)
	assert.Nil(t, v.Number)
}

func TestConstraintValueRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"two fields":    `{"weeks": 2, "enabled": true}`,
		"empty object":  `{}`,
		"string value":  `{"weeks": "two"}`,
		"enabled float": `{"enabled": 1.5}`,
		"bare scalar":   `42`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var v ConstraintValue
			assert.Error(t, json.Unmarshal([]byte(payload), &v))
		})
	}
}

func TestConstraintValueMarshalUsesUnitAsKey(t *testing.T) {
	payload, err := json.Marshal(NumberOf("weight", 40))
	require.NoError(t, err)
	assert.JSONEq(t, `{"weight": 40}`, string(payload))

	payload, err = json.Marshal(BoolOf(false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled": false}`, string(payload))
}

func TestConstraintValueScanFromDatabase(t *testing.T) {
	var v ConstraintValue
	require.NoError(t, v.Scan([]byte(`{"percent": 30}`)))
	require.NotNil(t, v.Number)
	assert.Equal(t, 30.0, v.Number.Value)

	driverValue, err := v.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"percent": 30}`, driverValue.(string))
}
