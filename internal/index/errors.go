package index

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scan failures.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindNotADirectory    ErrorKind = "not_a_directory"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindSerialization    ErrorKind = "serialization"
)

var (
	ErrNotFound         = errors.New("path does not exist")
	ErrNotADirectory    = errors.New("path is not a directory")
	ErrPermissionDenied = errors.New("permission denied")
	ErrSerialization    = errors.New("serialization failed")
)

const scanErrorFormat = "%s: %v"

// ScanError reports a classified failure for a path.
type ScanError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// Error returns the error string.
func (scanError *ScanError) Error() string {
	if scanError.Err == nil {
		return fmt.Sprintf(scanErrorFormat, scanError.Path, scanError.sentinel())
	}
	return fmt.Sprintf(scanErrorFormat, scanError.Path, scanError.Err)
}

// Unwrap exposes the wrapped error.
func (scanError *ScanError) Unwrap() error {
	return scanError.Err
}

// Is matches the sentinel that corresponds to the error kind.
func (scanError *ScanError) Is(target error) bool {
	return target == scanError.sentinel()
}

func (scanError *ScanError) sentinel() error {
	switch scanError.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindNotADirectory:
		return ErrNotADirectory
	case KindPermissionDenied:
		return ErrPermissionDenied
	default:
		return ErrSerialization
	}
}

// NewScanError wraps err with a kind and the path it concerns.
func NewScanError(kind ErrorKind, path string, err error) *ScanError {
	return &ScanError{Kind: kind, Path: path, Err: err}
}

// IsFatal reports whether the error aborts a scan when raised for the root path.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotADirectory)
}
