package restoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The backend is inconsistent about wrapping payloads in {"data": ...}.
// These two helpers are the only places that know about it.

// decodeList accepts `[...]` or `{"data": [...]}`.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}

	switch body[0] {
	case '[':
		items := []T{}
		if err := json.Unmarshal(body, &items); err != nil {
			return []T{}, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	case '{':
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return []T{}, fmt.Errorf("decode list envelope: %w", err)
		}
		inner := bytes.TrimSpace(wrapper.Data)
		if len(inner) == 0 || inner[0] != '[' {
			return []T{}, fmt.Errorf("%w: data is not an array", ErrUnexpectedShape)
		}
		items := []T{}
		if err := json.Unmarshal(inner, &items); err != nil {
			return []T{}, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	default:
		return []T{}, fmt.Errorf("%w: not a list", ErrUnexpectedShape)
	}
}

// decodeObject accepts `{...}` or `{"data": {...}}`.
func decodeObject(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return fmt.Errorf("%w: not an object", ErrUnexpectedShape)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return fmt.Errorf("decode object envelope: %w", err)
	}

	inner := bytes.TrimSpace(wrapper.Data)
	if len(inner) > 0 && inner[0] == '{' {
		body = inner
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	return nil
}
