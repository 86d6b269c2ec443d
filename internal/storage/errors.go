package storage

import (
	"errors"
	"fmt"
)

// ErrDocNotFound reports a document absent from the remote store.
var ErrDocNotFound = errors.New("document not found")

// StorageError means the durable local write or read itself failed. It is
// fatal for the operation that hit it, never for the process.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("local store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConnectivityError covers every way a remote call can fail: transport
// errors, remote rejections, or being attempted while offline. Callers queue
// and move on; it is never surfaced as a user-fatal error.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
