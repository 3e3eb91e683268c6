package common

import (
	"errors"
	"fmt"
)

var (
	// repository errors
	ErrorNotFound = errors.New("not found")

	// service errors
	ErrorInternal = errors.New("internal error")

	// auth errors
	ErrInvalidToken  = errors.New("invalid token")
	ErrNoCredential  = errors.New("no credential")
	ErrUserNotFound  = errors.New("user not found")
	ErrMissingSecret = errors.New("signing secret is not configured")
)

// Fields reported by ConflictError.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
)

// Rejection texts shown to callers.
const (
	ReasonWrongCredentials = "Incorrect email or password"
	ReasonInvalidToken     = "Could not validate credentials"
	ReasonNotAuthenticated = "Not authenticated"
)

// ConflictError reports that a unique identity attribute is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case FieldEmail:
		return "An account with this email already exists"
	case FieldUsername:
		return "This username is already taken"
	default:
		return fmt.Sprintf("%s is already taken", e.Field)
	}
}

// UnauthenticatedError is a rejected authentication attempt. Reason is safe to
// return to the caller; Err keeps the internal cause for logs and errors.Is.
type UnauthenticatedError struct {
	Reason string
	Err    error
}

func (e *UnauthenticatedError) Error() string {
	return e.Reason
}

func (e *UnauthenticatedError) Unwrap() error {
	return e.Err
}

// NewUnauthenticated wraps cause with a caller-visible reason.
func NewUnauthenticated(reason string, cause error) *UnauthenticatedError {
	return &UnauthenticatedError{Reason: reason, Err: cause}
}
