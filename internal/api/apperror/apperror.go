// Package apperror defines the error taxonomy shared by the services and
// the HTTP layer, with the status code each kind maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of an application error.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindConflict      Kind = "conflict"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindDelivery      Kind = "delivery"
	KindUnknown       Kind = "unknown"
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for the error kind. Duplicate email
// is reported as 400, matching the public API contract.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Delivery(message string, cause error) *Error {
	return &Error{Kind: KindDelivery, Message: message, Cause: cause}
}

func Unknown(message string, cause error) *Error {
	return &Error{Kind: KindUnknown, Message: message, Cause: cause}
}

// From converts any error into an *Error, wrapping unrecognized errors as
// KindUnknown with the given fallback message.
func From(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unknown(fallback, err)
}

// IsKind reports whether err is an application error of kind k.
func IsKind(err error, k Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == k
}
