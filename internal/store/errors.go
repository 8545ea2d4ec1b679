package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row id does not resolve.
var ErrNotFound = errors.New("record not found")

// RemoteError wraps a failed call against a store backend.
type RemoteError struct {
	Op     string
	Table  string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("store %s %s: status %d: %v", e.Op, e.Table, e.Status, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err came from a store backend.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
