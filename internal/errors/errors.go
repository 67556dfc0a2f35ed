package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeNotFoundOrCompleted = "NOT_FOUND_OR_COMPLETED"
	ErrCodeDuplicateName       = "DUPLICATE_NAME"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. An AppError matches the sentinel with the
// same Code.
var (
	ErrNotFound            = &AppError{Code: ErrCodeNotFound, Status: http.StatusNotFound}
	ErrNotFoundOrCompleted = &AppError{Code: ErrCodeNotFoundOrCompleted, Status: http.StatusNotFound}
	ErrDuplicateName       = &AppError{Code: ErrCodeDuplicateName, Status: http.StatusConflict}
	ErrValidation          = &AppError{Code: ErrCodeValidation, Status: http.StatusBadRequest}
	ErrUnauthorized        = &AppError{Code: ErrCodeUnauthorized, Status: http.StatusUnauthorized}
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// As is a shortcut for extracting an *AppError from a chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewNotFoundError reports a resource that is absent or not owned by the
// caller. The two cases are deliberately indistinguishable.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewNotFoundOrCompletedError reports a scheduled review that is absent, not
// owned by the caller, or already completed.
func NewNotFoundOrCompletedError(id int64) *AppError {
	return &AppError{
		Code:    ErrCodeNotFoundOrCompleted,
		Message: fmt.Sprintf("scheduled review not found or already completed: %d", id),
		Status:  http.StatusNotFound,
	}
}

// NewDuplicateNameError reports a unique-name violation.
func NewDuplicateNameError(resource, name string) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicateName,
		Message: fmt.Sprintf("%s already used: %s", resource, name),
		Status:  http.StatusConflict,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewUnauthorizedError creates a new UNAUTHORIZED error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewRateLimitedError creates a new RATE_LIMITED error
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: "too many requests",
		Status:  http.StatusTooManyRequests,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}
