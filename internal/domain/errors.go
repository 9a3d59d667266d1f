package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so the HTTP layer can map them to status codes.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInvalidState ErrorKind = "invalid_state"
)

// Error is the common error type returned by domain and application code.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewValidationError reports invalid input rejected before any persistence.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError reports a lost optimistic-lock race or duplicate resource.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewForbiddenError reports an action the actor is not allowed to perform.
func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// NewInvalidStateError reports a disallowed state-machine transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("invalid transition from %s to %s", from, to),
	}
}

// KindOf returns the ErrorKind of err, or an empty kind for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
