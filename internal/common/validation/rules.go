// Package validation evaluates a declarative table of field rules against a
// decoded JSON object.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "eiv-admissions/internal/common/errors"
)

// Rule checks one field value and returns its normalized form. A nil value
// means the field was present with JSON null.
type Rule func(field string, value interface{}) (interface{}, error)

// Field binds a field name to its rule.
type Field struct {
	Name string
	Rule Rule
}

// Apply confirms every declared field is present, then evaluates each rule in
// declaration order. The first failure aborts.
func Apply(input map[string]interface{}, fields []Field) (map[string]interface{}, error) {
	for _, f := range fields {
		if _, ok := input[f.Name]; !ok {
			return nil, apperrors.NewMissingFieldError(f.Name)
		}
	}

	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		v, err := f.Rule(f.Name, input[f.Name])
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// OptionalText accepts a string or null. Null stays null.
func OptionalText() Rule {
	return func(field string, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, apperrors.NewTypeError(field, "a string or null")
		}
		return s, nil
	}
}

// Flag accepts a boolean or null. Null becomes def.
func Flag(def bool) Rule {
	return func(field string, value interface{}) (interface{}, error) {
		if value == nil {
			return def, nil
		}
		b, ok := value.(bool)
		if !ok {
			return nil, apperrors.NewTypeError(field, "a boolean or null")
		}
		return b, nil
	}
}

// OneOf accepts one of allowed or null. Null becomes def.
func OneOf(def string, allowed ...string) Rule {
	return func(field string, value interface{}) (interface{}, error) {
		if value == nil {
			return def, nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, apperrors.NewTypeError(field, "a string or null")
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, apperrors.NewRangeError(field, s,
			fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	}
}

// Percent accepts a number within [0, 100] or null.
func Percent() Rule {
	return numberRule(func(n float64) string {
		if n < 0 || n > 100 {
			return "must be between 0 and 100"
		}
		return ""
	})
}

// NonNegative accepts a number >= 0 or null.
func NonNegative() Rule {
	return numberRule(func(n float64) string {
		if n < 0 {
			return "must be a non-negative number"
		}
		return ""
	})
}

func numberRule(check func(float64) string) Rule {
	return func(field string, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}
		n, ok := ToFloat(value)
		if !ok {
			return nil, apperrors.NewRangeError(field, value, "must be a number")
		}
		if reason := check(n); reason != "" {
			return nil, apperrors.NewRangeError(field, value, reason)
		}
		return n, nil
	}
}

// ToFloat converts JSON-decoded numeric values. Booleans are not numbers.
func ToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
