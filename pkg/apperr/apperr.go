package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Stable machine-readable codes, one per failure class.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConcurrency    = "CONCURRENCY_ERROR"
	CodeConflict       = "CONFLICT"
	CodeDuplicateAsset = "DUPLICATE_ASSET"
)

var (
	// ErrAuthentication means no authenticated user where one is required.
	ErrAuthentication = errors.New("authentication required")
	// ErrAuthorization means the current user is not allowed to perform the operation.
	ErrAuthorization = errors.New("operation not permitted")
	// ErrNotFound means the requested record or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConcurrency means an optimistic write lost against a concurrent modification.
	ErrConcurrency = errors.New("record was modified concurrently")
	// ErrConflict means an identity collision on insert.
	ErrConflict = errors.New("record already exists")
	// ErrDuplicateAsset means a stored file already exists at the computed location.
	ErrDuplicateAsset = errors.New("asset already exists at this location")
)

// FieldError attributes a validation failure to a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field-attributed input failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Code maps an error to its machine-readable code, or "" for unclassified errors.
func Code(err error) string {
	switch {
	case IsValidation(err):
		return CodeValidation
	case errors.Is(err, ErrAuthentication):
		return CodeAuthentication
	case errors.Is(err, ErrAuthorization):
		return CodeAuthorization
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConcurrency):
		return CodeConcurrency
	case errors.Is(err, ErrDuplicateAsset):
		return CodeDuplicateAsset
	case errors.Is(err, ErrConflict):
		return CodeConflict
	}
	return ""
}
