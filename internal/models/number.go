package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a float that decodes from either a JSON number or a numeric string.
// The backend serialises decimal columns as strings ("1250.50").
type Number float64

// Float64 returns the value as float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// UnmarshalJSON accepts 12.5, "12.5", "" and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", raw, err)
		}
		*n = Number(parsed)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*n = Number(value)
	return nil
}

// MarshalJSON always emits a JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}
