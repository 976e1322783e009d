package board

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a post id does not resolve.
var ErrNotFound = errors.New("post not found")

// ErrUnauthorized is returned when a mutating operation has no caller, or a
// caller other than the post's author.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports a blank or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// StorageError wraps an object storage failure for a single key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("object storage %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
