package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Pocket error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrInvalidJSON    ErrorCode = "INVALID_JSON"    // 400
	ErrSchemaMismatch ErrorCode = "SCHEMA_MISMATCH" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrFileTooLarge   ErrorCode = "FILE_TOO_LARGE"  // 413
	ErrEmptyCapsule   ErrorCode = "EMPTY_CAPSULE"   // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// PocketError represents a structured error with code, status, and details.
type PocketError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PocketError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PocketError {
	return &PocketError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidJSON creates a 400 validation error for documents that cannot be parsed.
func NewInvalidJSON(err error) *PocketError {
	msg := "document is not valid JSON"
	if err != nil {
		msg = fmt.Sprintf("document is not valid JSON: %v", err)
	}
	return &PocketError{
		Code:    ErrInvalidJSON,
		Status:  400,
		Message: msg,
	}
}

// NewSchemaMismatch creates a 400 validation error for documents carrying the wrong schema tag.
func NewSchemaMismatch(want, got string) *PocketError {
	msg := fmt.Sprintf("document schema %q is not supported (want %q)", got, want)
	if got == "" {
		msg = fmt.Sprintf("document has no schema tag (want %q)", want)
	}
	return &PocketError{
		Code:    ErrSchemaMismatch,
		Status:  400,
		Message: msg,
		Details: map[string]any{"want": want, "got": got},
	}
}

// NewNotFound creates a 404 error for when a capsule cannot be found.
func NewNotFound(id string) *PocketError {
	return &PocketError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *PocketError {
	return &PocketError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewFileTooLarge creates a 413 error when an import file exceeds the size limit.
func NewFileTooLarge(max, actual int64) *PocketError {
	return &PocketError{
		Code:    ErrFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewEmptyCapsule creates a 422 error when a capsule has no title or no content.
func NewEmptyCapsule(reason string) *PocketError {
	return &PocketError{
		Code:    ErrEmptyCapsule,
		Status:  422,
		Message: reason,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PocketError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PocketError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error (or anything it wraps) is a PocketError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PocketError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
