// Package apperr defines the error taxonomy shared by services and transports.
//
// Every error returned across a service boundary is an *Error carrying a Kind
// and a message that is safe to show to the user. The underlying cause, if
// any, is kept for logging and errors.Is/As.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStorage
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is checks against a Kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// StorageMessage is shown instead of the cause of a persistence failure.
const StorageMessage = "Something went wrong. Please try again."

// Error is an application error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Validation returns a KindValidation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict returns a KindConflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Storage wraps a persistence failure behind StorageMessage.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: StorageMessage, Err: err}
}

// KindOf returns the Kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err.
// Errors outside the taxonomy are reported with StorageMessage so causes never leak.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return StorageMessage
}
