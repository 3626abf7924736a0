// Package apperror defines the error taxonomy shared by the service and
// HTTP layers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidCredentials
	KindUnauthorized
	KindTokenExpired
	KindValidation
	KindNotFound
	KindConflict
)

// Code returns the machine-readable code sent to clients
func (k Kind) Code() string {
	switch k {
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindTokenExpired:
		return "TOKEN_EXPIRED"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// Status returns the HTTP status for the kind
func (k Kind) Status() int {
	switch k {
	case KindInvalidCredentials, KindUnauthorized, KindTokenExpired:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, caller-facing error. Err holds the cause for
// server-side logging and is never shown to clients.
type Error struct {
	Kind     Kind
	Resource string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PublicMessage is the message safe to return to the client
func (e *Error) PublicMessage() string {
	if e.Kind == KindInternal {
		return "Internal server error"
	}
	return e.Message
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid username/email or password"}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func TokenExpired() *Error {
	return &Error{Kind: KindTokenExpired, Message: "Token has expired"}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing resource, e.g. NotFound("Wallet")
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, Message: resource + " not found"}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From classifies any error, treating unclassified ones as internal
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err is an application error of the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
