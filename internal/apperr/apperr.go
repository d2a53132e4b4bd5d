// Package apperr defines the error categories handlers translate into
// HTTP responses.
package apperr

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)
