// Package apperr defines the error kinds the membership and RSVP managers
// report. Each kind carries a human-readable message and maps to one HTTP
// status; errors.Is matches by kind, so callers can compare against the
// sentinel values regardless of the message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindUnauthorized    Kind = "unauthorized"
	KindAlreadyMember   Kind = "already_member"
	KindRequestPending  Kind = "request_already_pending"
	KindGroupFull       Kind = "group_full"
	KindConflict        Kind = "conflict"
	KindStore           Kind = "store"
)

// Error is an operation failure of a given Kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "please sign in to continue"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "you are not allowed to do that"}
	ErrAlreadyMember   = &Error{Kind: KindAlreadyMember, Message: "you are already a member of this group"}
	ErrRequestPending  = &Error{Kind: KindRequestPending, Message: "your join request is already pending"}
	ErrGroupFull       = &Error{Kind: KindGroupFull, Message: "this group is full"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "the group changed while you were updating it; please try again"}
	ErrStore           = &Error{Kind: KindStore, Message: "the data store is unavailable"}
)

// New builds an error of the given kind with a custom message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a ValidationError.
func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

// NotFound builds a NotFoundError naming what was missing.
func NotFound(what string) error {
	return New(KindNotFound, "%s not found", what)
}

// Unauthorized builds an UnauthorizedError.
func Unauthorized(format string, args ...any) error {
	return New(KindUnauthorized, format, args...)
}

// Store wraps a store failure. A nil err returns nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStore, Message: op + " failed", Err: err}
}

// KindOf returns the kind of err, or KindStore for errors that did not
// originate here (unexpected failures are treated as store failures).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Message returns the human-readable message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrStore.Message
}

// HTTPStatus maps a kind to the response status used by the JSON API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindAlreadyMember, KindRequestPending, KindGroupFull, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
