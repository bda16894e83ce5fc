package adprocessor

import (
	"errors"
	"fmt"
)

// ErrorKind represents different categories of ingestion errors
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindFileNotFound
	KindFile
	KindDecode
	KindStorage
	KindNotImplemented
)

// String returns the string representation of ErrorKind
func (ek ErrorKind) String() string {
	switch ek {
	case KindFileNotFound:
		return "FILE_NOT_FOUND"
	case KindFile:
		return "FILE"
	case KindDecode:
		return "DECODE"
	case KindStorage:
		return "STORAGE"
	case KindNotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// Source format names used to tag decode errors.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatAvro = "avro"
)

// ProcessingError represents a detailed ingestion error with context.
// The Cause is preserved so callers can unwrap down to the parser's
// original error.
type ProcessingError struct {
	Kind    ErrorKind
	Format  string
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface
func (pe *ProcessingError) Error() string {
	switch {
	case pe.Format != "" && pe.Path != "":
		return fmt.Sprintf("[%s] %s %s: %s", pe.Kind, pe.Format, pe.Path, pe.Message)
	case pe.Path != "":
		return fmt.Sprintf("[%s] %s: %s", pe.Kind, pe.Path, pe.Message)
	default:
		return fmt.Sprintf("[%s] %s", pe.Kind, pe.Message)
	}
}

// Unwrap returns the underlying cause error
func (pe *ProcessingError) Unwrap() error {
	return pe.Cause
}

// NewFileNotFoundError creates an error for a missing input file
func NewFileNotFoundError(path string) *ProcessingError {
	return &ProcessingError{
		Kind:    KindFileNotFound,
		Path:    path,
		Message: "file not found",
	}
}

// NewFileError creates an error for a file that exists but cannot be read
func NewFileError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindFile,
		Path:    path,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewDecodeError creates an error for input that the format parser rejected
func NewDecodeError(format, path string, cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindDecode,
		Format:  format,
		Path:    path,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewStorageError creates an error for a storage sink failure
func NewStorageError(cause error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindStorage,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewNotImplementedError creates the error returned by base processor
// operations that a concrete processor failed to override
func NewNotImplementedError(method string) *ProcessingError {
	return &ProcessingError{
		Kind:    KindNotImplemented,
		Message: fmt.Sprintf("subclasses must implement the %s method", method),
	}
}

// KindOf extracts the ErrorKind from an error chain. Errors that do not
// carry a ProcessingError anywhere in the chain report KindUnknown.
func KindOf(err error) ErrorKind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
