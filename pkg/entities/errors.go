package entities

import "fmt"

// FieldError reports a required field that is missing or malformed.
type FieldError struct {
	Field string
}

func newFieldError(field string) *FieldError {
	return &FieldError{Field: field}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid or missing field %q", e.Field)
}
