package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound means the storage file does not exist, usually
	// because the application has never been started.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrRootNotObject means the document root is not a JSON object.
	ErrRootNotObject = errors.New("configuration root is not a JSON object")

	// ErrCritical matches a *CriticalError.
	ErrCritical = errors.New("configuration left in an unknown state")
)

// ParseError is returned when the storage file is not valid JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError is returned when the updated document could not be written
// and the original content was restored.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s (original content restored): %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CriticalError is returned when both the update and the rollback write
// failed. The file content is unknown and must be recovered by hand.
type CriticalError struct {
	Path        string
	WriteErr    error
	RollbackErr error
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("failed to restore %s after write error: write: %v; restore: %v",
		e.Path, e.WriteErr, e.RollbackErr)
}

// Is reports whether target is ErrCritical.
func (e *CriticalError) Is(target error) bool { return target == ErrCritical }

func (e *CriticalError) Unwrap() []error { return []error{e.WriteErr, e.RollbackErr} }
