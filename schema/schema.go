package schema

import (
	"encoding/json"
	"fmt"

	"github.com/purefictiongames/wiregraph/errors"
)

// FieldType is the enumerated type tag a schema field may declare.
type FieldType string

// Allowed field type tags
const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeInt    FieldType = "int"
	TypeBool   FieldType = "bool"
	TypeTable  FieldType = "table"
	TypeAny    FieldType = "any"
)

// Field declares the contract for one payload field.
type Field struct {
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// Def is a schema definition: field name to field contract.
type Def map[string]Field

// FieldError describes one validation failure on one payload field.
type FieldError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Received any    `json:"received"`
	Message  string `json:"message"`
}

// validTypes is the closed set of type tags accepted at registration.
var validTypes = map[FieldType]bool{
	TypeString: true,
	TypeNumber: true,
	TypeInt:    true,
	TypeBool:   true,
	TypeTable:  true,
	TypeAny:    true,
}

// ValidateDef validates a schema definition itself: every field's type tag
// must belong to the enumerated set, and a declared default must conform to
// the declared type. Called once at registration so dispatch never meets a
// malformed schema.
func ValidateDef(def Def) error {
	if len(def) == 0 {
		return errors.WrapConfig(errors.ErrInvalidSchema, "Schema", "ValidateDef", "empty definition")
	}

	for name, field := range def {
		if !validTypes[field.Type] {
			return errors.WrapConfig(
				fmt.Errorf("field %q: %w: %q", name, errors.ErrInvalidFieldType, field.Type),
				"Schema", "ValidateDef", "type tag check")
		}
		if field.Default != nil && !conforms(field.Default, field.Type) {
			return errors.WrapConfig(
				fmt.Errorf("field %q: default %v does not match declared type %q: %w",
					name, field.Default, field.Type, errors.ErrInvalidSchema),
				"Schema", "ValidateDef", "default type check")
		}
	}
	return nil
}

// Validate checks payload against def: required-field presence and type
// conformance only. Unknown fields are not errors. Returns true and an empty
// slice when the payload conforms.
func Validate(payload map[string]any, def Def) (bool, []FieldError) {
	var errs []FieldError

	for name, field := range def {
		value, present := payload[name]
		if !present {
			if field.Required {
				errs = append(errs, FieldError{
					Field:    name,
					Expected: string(field.Type),
					Received: nil,
					Message:  fmt.Sprintf("required field %q is missing", name),
				})
			}
			continue
		}

		if !conforms(value, field.Type) {
			errs = append(errs, FieldError{
				Field:    name,
				Expected: string(field.Type),
				Received: value,
				Message:  fmt.Sprintf("field %q: expected %s, got %T", name, field.Type, value),
			})
		}
	}

	return len(errs) == 0, errs
}

// ValidateAndProcess validates payload against def and, on success, returns a
// copy with declared defaults injected for every optional field absent from
// the input. The input payload is never mutated.
func ValidateAndProcess(payload map[string]any, def Def) (bool, []FieldError, map[string]any) {
	ok, errs := Validate(payload, def)
	if !ok {
		return false, errs, nil
	}

	processed := make(map[string]any, len(payload)+len(def))
	for k, v := range payload {
		processed[k] = v
	}
	for name, field := range def {
		if _, present := processed[name]; !present && field.Default != nil {
			processed[name] = field.Default
		}
	}

	return true, nil, processed
}

// Sanitize returns a copy of payload restricted to exactly the fields
// declared in def, discarding all others. It performs no validation.
func Sanitize(payload map[string]any, def Def) map[string]any {
	sanitized := make(map[string]any, len(def))
	for name := range def {
		if value, present := payload[name]; present {
			sanitized[name] = value
		}
	}
	return sanitized
}

// conforms reports whether value matches the declared type tag. Numeric
// checks accept the types JSON and YAML decoding actually produce.
func conforms(value any, ft FieldType) bool {
	if value == nil {
		// nil satisfies only "any"; a present-but-nil required field is
		// indistinguishable from garbage for every concrete type
		return ft == TypeAny
	}

	switch ft {
	case TypeAny:
		return true
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBool:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		return isNumber(value)
	case TypeInt:
		return isInt(value)
	case TypeTable:
		switch value.(type) {
		case map[string]any, []any:
			return true
		}
		return false
	default:
		return false
	}
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case int, int32, int64, float32, float64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInt(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		// JSON decodes all numbers to float64; accept integral values
		return v == float64(int64(v))
	case float32:
		return v == float32(int32(v))
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
