// Package apperr classifies domain failures so handlers can map them to HTTP
// statuses in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota // malformed or missing input
	Conflict               // uniqueness violation
	Auth                   // bad credentials or token
	Forbidden              // authenticated but not allowed
	NotFound               // referenced entity absent
	State                  // illegal order-status transition
	Coupon                 // coupon inapplicable
	Store                  // transaction or connectivity failure
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the cause for logging while the message stays safe for callers.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; anything unclassified is a
// store failure so no internal detail leaks.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Store
}

// Message returns the caller-safe message for an error chain.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error chain to a response code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation, Conflict, Coupon:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case State:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
