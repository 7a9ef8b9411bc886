package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrNetwork ErrorType = iota
	ErrMalformedResponse
	ErrFileOp
	ErrInvalidConfig
	ErrIncomplete
	ErrCanceled
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrNetwork:
		return "Network"
	case ErrMalformedResponse:
		return "MalformedResponse"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrIncomplete:
		return "Incomplete"
	case ErrCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// DatabaseError represents an error while building, persisting or querying
// the crates database. Page is set for errors tied to one registry page and
// Path for errors tied to a local file.
type DatabaseError struct {
	Type ErrorType
	Page int
	Path string
	Err  error
}

// Error implements the error interface
func (e *DatabaseError) Error() string {
	switch {
	case e.Page > 0:
		return fmt.Sprintf("[%s] page %d: %v", e.Type, e.Page, e.Err)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	default:
		return fmt.Sprintf("[%s] %v", e.Type, e.Err)
	}
}

// Unwrap returns the wrapped error
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// IsErrorType reports whether any DatabaseError in err's chain has type t.
func IsErrorType(err error, t ErrorType) bool {
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr.Type == t
	}
	return false
}
