package model

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrNonPositive         = errors.New("value must be positive")
	ErrInvalidRange        = errors.New("invalid range")
	ErrEmptyChiploadTable  = errors.New("chipload table is empty")
	ErrDuplicateDiameter   = errors.New("duplicate tool diameter in chipload table")
	ErrChiploadUnset       = errors.New("chipload is not set")
	ErrUnknownMaterial     = errors.New("unknown material")
	ErrUnknownCuttingStyle = errors.New("unknown cutting style")
	ErrNotWholeNumber      = errors.New("value must be a whole number")
)

// ValidationError reports which field was rejected and why.
// Err is always one of the sentinel errors above, so callers can use errors.Is.
type ValidationError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s (%v): %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field string, value interface{}, err error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err}
}
