package shared

import "errors"

var (
	// ErrNotFound indicates a referenced resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
)
