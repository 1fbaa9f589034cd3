package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeLimitExceeded ErrorType = "LIMIT_EXCEEDED"

	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeDatabase ErrorType = "DATABASE"
)

// AppError is an error that knows how it should surface over HTTP
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured details, e.g. per-field validation messages
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Server-side failures carry a stack trace; client errors do not.
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func newError(t ErrorType, status int, message string) *AppError {
	return &AppError{Type: t, Message: message, HTTPStatus: status}
}

// NewValidationError reports a malformed request or an illegal canvas operation
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing act, canvas or node
func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewConflictError reports an identity clash
func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, http.StatusConflict, message)
}

// NewLimitError reports that a canvas cap was hit
func NewLimitError(what string, max int) *AppError {
	return newError(ErrorTypeLimitExceeded, http.StatusUnprocessableEntity,
		fmt.Sprintf("maximum %s reached: %d", what, max)).
		WithDetails(map[string]interface{}{"limit": max})
}

// NewInternalError reports a broken invariant
func NewInternalError(message string) *AppError {
	err := newError(ErrorTypeInternal, http.StatusInternalServerError, message)
	err.StackTrace = captureStackTrace()
	return err
}

// NewDatabaseError wraps a record store failure
func NewDatabaseError(operation string, err error) *AppError {
	appErr := newError(ErrorTypeDatabase, http.StatusInternalServerError,
		fmt.Sprintf("database operation '%s' failed", operation))
	appErr.Cause = err
	appErr.StackTrace = captureStackTrace()
	return appErr
}

// IsAppError checks if an error chain contains an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsNotFound(err error) bool      { return IsType(err, ErrorTypeNotFound) }
func IsValidation(err error) bool    { return IsType(err, ErrorTypeValidation) }
func IsConflict(err error) bool      { return IsType(err, ErrorTypeConflict) }
func IsLimitExceeded(err error) bool { return IsType(err, ErrorTypeLimitExceeded) }
func IsInternal(err error) bool      { return IsType(err, ErrorTypeInternal) }
