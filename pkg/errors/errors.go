package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for both the devapi responses and the client
// notifications.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeRequestFailed Code = "REQUEST_FAILED"
	CodeNetwork       Code = "NETWORK_ERROR"
	CodeIntegrity     Code = "INTEGRITY_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// UserFacing codes carry a message written for the person at the
	// terminal, shown as is instead of PublicMessage.
	UserFacing bool
}

// Public reports whether the server may echo the error message back to the
// caller. 5xx answers only ever carry PublicMessage.
func (m Metadata) Public() bool {
	return m.HTTPStatus < http.StatusInternalServerError
}

// The backend answers duplicates with 400, so CodeConflict does too.
var metadataByCode = map[Code]Metadata{
	CodeValidation:    {http.StatusBadRequest, "validation failed", true},
	CodeUnauthorized:  {http.StatusUnauthorized, "session expired, please log in again", false},
	CodeNotFound:      {http.StatusNotFound, "resource not found", true},
	CodeConflict:      {http.StatusBadRequest, "conflict detected", true},
	CodeRequestFailed: {http.StatusBadGateway, "request failed", true},
	CodeNetwork:       {http.StatusServiceUnavailable, "cannot reach the server, check your connection", false},
	CodeIntegrity:     {http.StatusUnprocessableEntity, "inconsistent data", false},
	CodeInternal:      {http.StatusInternalServerError, "internal server error", false},
	CodeDependency:    {http.StatusServiceUnavailable, "dependency unavailable", false},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	meta, ok := metadataByCode[code]
	if !ok {
		return metadataByCode[CodeInternal]
	}
	return meta
}

// Error is the typed error passed between layers. A nil *Error answers
// every accessor with a zero value.
type Error struct {
	code    Code
	message string
	status  int
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap keeps err reachable through errors.Is and errors.As.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Status is the HTTP status observed on the wire, zero when none was received.
func (e *Error) Status() int {
	if e == nil {
		return 0
	}
	return e.status
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithStatus(status int) *Error {
	if e != nil {
		e.status = status
	}
	return e
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return string(e.code) + ": " + e.message
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in the chain of err.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return As(err) != nil && As(err).Code() == code
}

// UserMessage renders err as a short notification text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	meta := MetadataFor(typed.Code())
	if meta.UserFacing && typed.Message() != "" {
		return typed.Message()
	}
	return meta.PublicMessage
}
