package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Flow error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrLowConfidence  ErrorCode = "LOW_CONFIDENCE"  // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// FlowError represents a structured error with code, status, and details.
type FlowError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *FlowError {
	return &FlowError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a task cannot be found.
func NewNotFound(id string) *FlowError {
	return &FlowError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("task not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing export target directory.
func NewFileNotFound(path string) *FlowError {
	return &FlowError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewLowConfidence creates a 422 error when a parse is too weak to store
// without confirmation.
func NewLowConfidence(got, min float64) *FlowError {
	return &FlowError{
		Code:    ErrLowConfidence,
		Status:  422,
		Message: fmt.Sprintf("parse confidence %.2f is below minimum %.2f; retry with force to store anyway", got, min),
		Details: map[string]any{"confidence": got, "min_confidence": min},
	}
}

// NewCancelled creates a 499 error for a cancelled context.
func NewCancelled(op string) *FlowError {
	return &FlowError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *FlowError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &FlowError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if err, or any error it wraps, is a FlowError with the given code.
func Is(err error, code ErrorCode) bool {
	var fErr *FlowError
	if stderrors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}
