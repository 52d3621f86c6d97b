package services

import (
	"errors"
	"fmt"

	"prompteria-api/repositories"
)

// Errors returned by the services. Controllers map them to HTTP statuses
// in respondError; callers match them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream failure")
)

// Error carries a client-facing message for one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// storeError converts a repository failure. notFound is returned for a
// missing record; anything else is an upstream failure.
func storeError(err error, notFound string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, notFound)
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
