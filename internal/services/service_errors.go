// filepath: internal/services/service_errors.go
package services

import (
	"errors"

	"scmdash/internal/repository"
)

// Standard errors returned by the service layer.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnavailable       = errors.New("upstream unavailable")
)

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// notFound converts repository.ErrNotFound into a service error naming the resource.
func notFound(err error, what string, id any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{What: what, ID: id}
	}
	return err
}
