package filters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the formats of every set field. It does not compare range ends.
func Validate(v *validator.Validate, state State) error {
	if v == nil {
		return fmt.Errorf("filters: validator is required")
	}
	return v.Struct(state)
}

// FieldErrors flattens validator errors into field -> failed tag, keyed by JSON path.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[jsonPath(fieldErr.StructNamespace())] = fieldErr.Tag()
	}
	return details
}

var namespaceNames = map[string]string{
	"State":       "",
	"DateRange":   "date_range",
	"AmountRange": "amount_range",
	"HourRange":   "hour_range",
	"Start":       "start",
	"End":         "end",
	"Min":         "min",
	"Max":         "max",
}

func jsonPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		name, ok := namespaceNames[part]
		if !ok {
			name = part
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return strings.Join(out, ".")
}
