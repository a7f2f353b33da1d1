package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying the HTTP status it should surface as.
// Services return these; handlers translate them with StatusOf.
type Error struct {
	Status  int
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a 404 error for a missing resource
func NotFound(resource string) *Error {
	return &Error{Status: http.StatusNotFound, Message: resource + " not found"}
}

// NotFoundf builds a 404 error with a formatted message
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a 403 error
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// BadRequest builds a 400 error
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// BadRequestf builds a 400 error with a formatted message
func BadRequestf(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a 401 error
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Wrap attaches a cause to a domain error so the original error chain
// survives logging while the client still sees the domain message
func Wrap(err error, appErr *Error) *Error {
	return &Error{Status: appErr.Status, Message: appErr.Message, Err: err}
}

// StatusOf extracts the HTTP status for an error, defaulting to 500 for
// anything that is not an *Error
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
