package baseline

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Optional is a float64 that may be absent. A driver value that was never
// recorded, or belongs to an unused slot, is None.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None returns an absent value.
func None() Optional {
	return Optional{}
}

// Get returns the value and whether it is present.
func (o Optional) Get() (float64, bool) {
	return o.Value, o.Valid
}

// Or returns the value, or def when absent.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}

	return o.Value
}

func (o Optional) String() string {
	if !o.Valid {
		return "none"
	}

	return strconv.FormatFloat(o.Value, 'g', -1, 64)
}

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return []byte("null"), nil
	}

	return strconv.AppendFloat(nil, o.Value, 'g', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)

	return nil
}
