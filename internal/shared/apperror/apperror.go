package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for transport mapping
type Kind string

const (
	KindClientInput         Kind = "CLIENT_INPUT"
	KindNotFound            Kind = "NOT_FOUND"
	KindEngineConfiguration Kind = "ENGINE_CONFIGURATION"
	KindStorageConsistency  Kind = "STORAGE_CONSISTENCY"
	KindInternal            Kind = "INTERNAL"
)

// Error is a classified application error carrying a human readable message
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code the error maps to
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindClientInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Factory functions

func ClientInput(message string) *Error {
	return &Error{Kind: KindClientInput, Message: message}
}

func ClientInputf(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindClientInput, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func EngineConfiguration(message string, cause error) *Error {
	return &Error{Kind: KindEngineConfiguration, Message: message, Cause: cause}
}

func StorageConsistency(message string, cause error) *Error {
	return &Error{Kind: KindStorageConsistency, Message: message, Cause: cause}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
