package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("version conflict")
)

// ValidationError reports malformed or missing input, naming the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StoreError wraps a failure of the underlying document store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err is (or wraps) a *StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
