// Package errors provides standardized domain errors with codes for the Muza API.
//
// Usage:
//
//	// In services - return typed errors
//	if !isFlac(name) {
//	    return errors.UnsupportedFileType("only FLAC uploads are accepted")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    response.NotFound(w, err.Error(), logger)
//	    return
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeUnsupportedFileType:
//	        response.BadRequest(w, domainErr.Message, logger)
//	    case errors.CodeStorage:
//	        response.InternalError(w, domainErr.Message, logger)
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeAlreadyExists       Code = "ALREADY_EXISTS"
	CodeValidation          Code = "VALIDATION"
	CodeInternal            Code = "INTERNAL"
	CodeUnsupportedFileType Code = "UNSUPPORTED_FILE_TYPE"
	CodeMetadataExtraction  Code = "METADATA_EXTRACTION"
	CodeServiceUnavailable  Code = "SERVICE_UNAVAILABLE"
	CodeEntityPersist       Code = "ENTITY_PERSIST"
	CodeStorage             Code = "STORAGE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeValidation, CodeUnsupportedFileType, CodeMetadataExtraction:
		return http.StatusBadRequest
	case CodeServiceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists       = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal            = &Error{Code: CodeInternal, Message: "internal error"}
	ErrUnsupportedFileType = &Error{Code: CodeUnsupportedFileType, Message: "unsupported file type"}
	ErrMetadataExtraction  = &Error{Code: CodeMetadataExtraction, Message: "metadata extraction failed"}
	ErrServiceUnavailable  = &Error{Code: CodeServiceUnavailable, Message: "external service unavailable"}
	ErrEntityPersist       = &Error{Code: CodeEntityPersist, Message: "entity persist failure"}
	ErrStorage             = &Error{Code: CodeStorage, Message: "storage failure"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedFileType creates an unsupported file type error.
func UnsupportedFileType(msg string) *Error {
	return &Error{Code: CodeUnsupportedFileType, Message: msg}
}

// UnsupportedFileTypef creates an unsupported file type error with formatted message.
func UnsupportedFileTypef(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedFileType, Message: fmt.Sprintf(format, args...)}
}

// MetadataExtraction creates a metadata extraction error.
func MetadataExtraction(msg string) *Error {
	return &Error{Code: CodeMetadataExtraction, Message: msg}
}

// ServiceUnavailable creates an external service error.
func ServiceUnavailable(msg string) *Error {
	return &Error{Code: CodeServiceUnavailable, Message: msg}
}

// ServiceUnavailablef creates an external service error with formatted message.
func ServiceUnavailablef(format string, args ...any) *Error {
	return &Error{Code: CodeServiceUnavailable, Message: fmt.Sprintf(format, args...)}
}

// EntityPersist creates an entity persist error.
func EntityPersist(msg string) *Error {
	return &Error{Code: CodeEntityPersist, Message: msg}
}

// EntityPersistf creates an entity persist error with formatted message.
func EntityPersistf(format string, args ...any) *Error {
	return &Error{Code: CodeEntityPersist, Message: fmt.Sprintf(format, args...)}
}

// Storage creates a storage error.
func Storage(msg string) *Error {
	return &Error{Code: CodeStorage, Message: msg}
}

// Storagef creates a storage error with formatted message.
func Storagef(format string, args ...any) *Error {
	return &Error{Code: CodeStorage, Message: fmt.Sprintf(format, args...)}
}
