// internal/domain/constraint.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ConstraintKind discriminates the two value shapes a constraint can hold.
type ConstraintKind string

const (
	KindNumber  ConstraintKind = "number"
	KindBoolean ConstraintKind = "boolean"
)

// ConstraintGroup is the logical group a constraint key belongs to.
type ConstraintGroup string

const (
	GroupThreshold ConstraintGroup = "threshold"
	GroupAdvanced  ConstraintGroup = "advanced"
	GroupToggle    ConstraintGroup = "toggle"
)

// NumberValue is a numeric constraint payload. The unit doubles as the JSON
// key on the wire, e.g. {"weeks": 2} or {"weight": 40}.
type NumberValue struct {
	Unit  string
	Value float64
}

// BoolValue is a boolean constraint payload, stored as {"enabled": true}.
type BoolValue struct {
	Enabled bool
}

// ConstraintValue is a tagged union over NumberValue and BoolValue. Exactly
// one of the two arms is set.
type ConstraintValue struct {
	Number  *NumberValue
	Boolean *BoolValue
}

// NumberOf builds a numeric constraint value.
func NumberOf(unit string, value float64) ConstraintValue {
	return ConstraintValue{Number: &NumberValue{Unit: unit, Value: value}}
}

// BoolOf builds a boolean constraint value.
func BoolOf(enabled bool) ConstraintValue {
	return ConstraintValue{Boolean: &BoolValue{Enabled: enabled}}
}

func (v ConstraintValue) Kind() ConstraintKind {
	if v.Boolean != nil {
		return KindBoolean
	}
	return KindNumber
}

func (v ConstraintValue) IsZero() bool {
	return v.Number == nil && v.Boolean == nil
}

func (v ConstraintValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Boolean != nil:
		return json.Marshal(map[string]bool{"enabled": v.Boolean.Enabled})
	case v.Number != nil:
		unit := v.Number.Unit
		if unit == "" {
			unit = "value"
		}
		return json.Marshal(map[string]float64{unit: v.Number.Value})
	default:
		return []byte("null"), nil
	}
}

func (v *ConstraintValue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("constraint value must be an object: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("constraint value must hold exactly one field, got %d", len(raw))
	}

	for key, payload := range raw {
		if key == "enabled" {
			var enabled bool
			if err := json.Unmarshal(payload, &enabled); err != nil {
				return fmt.Errorf("field %q must be a boolean: %w", key, err)
			}
			v.Number = nil
			v.Boolean = &BoolValue{Enabled: enabled}
			return nil
		}

		var value float64
		if err := json.Unmarshal(payload, &value); err != nil {
			return fmt.Errorf("field %q must be numeric: %w", key, err)
		}
		v.Boolean = nil
		v.Number = &NumberValue{Unit: key, Value: value}
	}
	return nil
}

// Value implements driver.Valuer so the union round-trips through a JSONB column.
func (v ConstraintValue) Value() (driver.Value, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan implements sql.Scanner.
func (v *ConstraintValue) Scan(src any) error {
	switch data := src.(type) {
	case []byte:
		return v.UnmarshalJSON(data)
	case string:
		return v.UnmarshalJSON([]byte(data))
	case nil:
		*v = ConstraintValue{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ConstraintValue", src)
	}
}

// ConstraintItem is one tunable rule steering the allocation engine.
type ConstraintItem struct {
	ID          int64           `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	Key         string          `json:"constraint_key" db:"constraint_key"`
	Value       ConstraintValue `json:"constraint_value" db:"constraint_value"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ConstraintUpdate carries a partial update: a new value, a new active flag,
// or both. Nil fields are left untouched.
type ConstraintUpdate struct {
	Value    *ConstraintValue `json:"constraint_value,omitempty"`
	IsActive *bool            `json:"is_active,omitempty"`
}

func (u ConstraintUpdate) Empty() bool {
	return u.Value == nil && u.IsActive == nil
}
