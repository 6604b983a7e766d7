package errorutil

import (
	"errors"
	"fmt"
	"io/fs"
)

// FileError represents a file operation error with additional context
type FileError struct {
	Operation  string // The operation that failed (e.g., "read", "write", "create")
	Path       string // The file path that was being accessed
	Underlying error  // The underlying error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s operation failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// NewFileError creates a new FileError
func NewFileError(operation, path string, err error) *FileError {
	return &FileError{
		Operation:  operation,
		Path:       path,
		Underlying: err,
	}
}

// IsPermission reports whether the failure was a permission problem
func (e *FileError) IsPermission() bool {
	return errors.Is(e.Underlying, fs.ErrPermission)
}

// IsNotExist reports whether the file was missing
func (e *FileError) IsNotExist() bool {
	return errors.Is(e.Underlying, fs.ErrNotExist)
}
