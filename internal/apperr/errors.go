// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound means a note or link did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps bad option, query, or config values.
	ErrInvalidInput = errors.New("invalid input")
)
