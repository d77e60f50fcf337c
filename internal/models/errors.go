package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrFilesystem ErrorType = iota
	ErrTool
	ErrUnknownMetadata
	ErrSigning
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrFilesystem:
		return "Filesystem"
	case ErrTool:
		return "Tool"
	case ErrUnknownMetadata:
		return "UnknownMetadataFormat"
	case ErrSigning:
		return "Signing"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// RepoError represents an error during repository metadata generation.
// Any RepoError aborts the whole run; a half-built repository is never published.
type RepoError struct {
	Type ErrorType
	Path string
	Err  error
}

// Error implements the error interface
func (e *RepoError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *RepoError) Unwrap() error {
	return e.Err
}
