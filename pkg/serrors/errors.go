package serrors

import (
	"errors"
	"fmt"
)

// Kind classifies failures the way callers need to react to them.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindPersistence   Kind = "persistence"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	return NewError(KindValidation, code, message)
}

func Conflict(code, message string) *Error {
	return NewError(KindConflict, code, message)
}

func NotFound(code, message string) *Error {
	return NewError(KindNotFound, code, message)
}

func Authorization(code, message string) *Error {
	return NewError(KindAuthorization, code, message)
}

// Persistence wraps a store failure. The cause stays reachable through
// errors.Is/errors.As but is never surfaced to API clients.
func Persistence(cause error) *Error {
	return &Error{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE_FAILURE",
		Message: "storage operation failed",
		cause:   cause,
	}
}

func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: err}
}

func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsValidation(err error) bool    { return IsKind(err, KindValidation) }
func IsConflict(err error) bool      { return IsKind(err, KindConflict) }
func IsNotFound(err error) bool      { return IsKind(err, KindNotFound) }
func IsAuthorization(err error) bool { return IsKind(err, KindAuthorization) }
func IsPersistence(err error) bool   { return IsKind(err, KindPersistence) }
