package security

import (
	"fmt"
)

// MaxModelNameLength bounds a model name.
const MaxModelNameLength = 64

// ValidationError represents a field validation error.
type ValidationError struct {
	Field      string
	Value      interface{}
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s: %s (got: %v)", e.Field, e.Constraint, e.Value)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Constraint)
}

// ValidateModelName validates a model name given on a flag or in config.
func ValidateModelName(name string) error {
	if name == "" {
		return &ValidationError{
			Field:      "model",
			Constraint: "required",
		}
	}

	if len(name) > MaxModelNameLength {
		return &ValidationError{
			Field:      "model",
			Value:      len(name),
			Constraint: fmt.Sprintf("maximum length is %d characters", MaxModelNameLength),
		}
	}

	for _, r := range name {
		if !isModelNameRune(r) {
			return &ValidationError{
				Field:      "model",
				Value:      SanitizeForLogWithLength(name, MaxModelNameLength),
				Constraint: "must contain only letters, digits, '-' or '_'",
			}
		}
	}

	return nil
}

func isModelNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
