package errx

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrCorruptSession = errors.New("session history is corrupt")
	ErrUpstream       = errors.New("upstream call failed")
)

// SystemErrorMessage is a user-facing fallback when internal errors occur.
const SystemErrorMessage = "internal server error"

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Err, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}

func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

func Validation(format string, args ...any) *AppError {
	return New(ErrValidation, http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *AppError {
	return New(ErrNotFound, http.StatusNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *AppError {
	return New(ErrConflict, http.StatusConflict, fmt.Sprintf(format, args...))
}

func Upstream(err error, message string) *AppError {
	return New(fmt.Errorf("%w: %v", ErrUpstream, err), http.StatusBadGateway, message)
}

// Status resolves the HTTP status for err, defaulting to 500.
func Status(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the safe message carried by err, if any.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return SystemErrorMessage
}

// Kind names the taxonomy bucket of err for API error bodies.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrCorruptSession):
		return "corrupt_session"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "internal_error"
	}
}
