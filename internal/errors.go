package internal

import (
	"errors"
	"fmt"
)

// Generic errors
var (
	// ErrResourceNotFound is returned when a requested resource does not
	// exist.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrUnsupportedBackend is returned when a storage backend name is not
	// recognised.
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

type (
	// ErrMissingParameter occurs when the caller has failed to provide a
	// required parameter
	ErrMissingParameter struct {
		Parameter string
	}
)

func (e *ErrMissingParameter) Error() string {
	return fmt.Sprintf("required parameter missing: %s", e.Parameter)
}
