package quillpress

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrSessionExpired is returned when the server rejects the current
	// token with HTTP 401.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden is returned when the server rejects the current token
	// with HTTP 403.
	ErrForbidden = errors.New("access forbidden")

	// ErrNoToken is returned when a login response carries no usable
	// Authorization header.
	ErrNoToken = errors.New("no token in login response")
)

// QuillpressError is the base error type for SDK errors.
type QuillpressError struct {
	// Code is a machine-readable error code.
	Code string
	// Err is the underlying error.
	Err error
}

// Error returns the error message.
func (e *QuillpressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quillpress [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("quillpress [%s]", e.Code)
}

// Unwrap returns the underlying error.
func (e *QuillpressError) Unwrap() error {
	return e.Err
}

// SessionExpiredError is returned when the server answers HTTP 401.
// The client has already dropped its token when this error is returned.
type SessionExpiredError struct {
	// Message is the server-provided explanation, if any.
	Message string
}

// Error returns a human-readable description of the expiry.
func (e *SessionExpiredError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("session expired: %s", e.Message)
	}
	return "session expired"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrSessionExpired).
func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

// ForbiddenError is returned when the server answers HTTP 403.
// The client has already dropped its token when this error is returned.
type ForbiddenError struct {
	// Message is the server-provided explanation, if any.
	Message string
}

// Error returns a human-readable description of the rejection.
func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("access forbidden: %s", e.Message)
	}
	return "access forbidden"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrForbidden).
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
