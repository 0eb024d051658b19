// Package common defines shared constants and sentinel errors used across
// the bookvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrOpenFailed = errors.New("cannot open catalog")
	ErrCorrupted  = errors.New("catalog integrity check failed")
	ErrTxFailed   = errors.New("transaction failed")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (field constraints, raised before any transaction).
	ErrValidation = errors.New("validation error")
)
