// internal/errors/errors.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an operation failure into one of the stable categories
// callers are allowed to see. Raw storage errors never cross the API
// boundary; they are logged and collapsed into one of these.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConstraintViolation
	KindInternal
)

// Error carries a kind plus a stable, client-safe message. The wrapped
// cause (if any) is for server-side logs only.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Kind reports the category of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Message returns the client-safe message for err. Unclassified errors get
// a generic one so storage details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return "internal server error"
}

// Status maps an error to the HTTP status code the transport should return.
func Status(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConstraintViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// InvalidArgument creates a validation error. Use in the service layer for
// bad input (malformed ids, self-swipe, empty content).
func InvalidArgument(msg string) error {
	return &Error{kind: KindInvalidArgument, msg: msg}
}

// Unauthorized creates an authentication error.
func Unauthorized(msg string) error {
	return &Error{kind: KindUnauthorized, msg: msg}
}

// Forbidden marks an authenticated caller that is not a participant of the
// target resource.
func Forbidden(msg string) error {
	return &Error{kind: KindForbidden, msg: msg}
}

// NotFound marks a missing resource or association. For unmatch this is
// deliberately also returned when the caller is not a participant, so the
// two cases stay indistinguishable.
func NotFound(msg string) error {
	return &Error{kind: KindNotFound, msg: msg}
}

// ConstraintViolation surfaces a storage uniqueness/foreign-key conflict.
func ConstraintViolation(msg string) error {
	return &Error{kind: KindConstraintViolation, msg: msg}
}

// Internal wraps an unexpected failure with a generic client message.
func Internal(err error) error {
	return &Error{kind: KindInternal, msg: "internal server error", cause: err}
}

// Map converts repo/infra errors into taxonomy errors. Keeps the service
// layer clean by centralizing the translation.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{kind: KindNotFound, msg: "record not found", cause: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{kind: KindConstraintViolation, msg: "conflicting record", cause: err}

	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{kind: KindConstraintViolation, msg: "related record missing", cause: err}

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{kind: KindInternal, msg: "request aborted", cause: err}

	default:
		return Internal(err)
	}
}
