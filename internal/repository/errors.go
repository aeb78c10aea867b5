package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when completing a task id that does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyCompleted is returned when completing a task twice.
	ErrAlreadyCompleted = errors.New("task already completed")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("task store is closed")
)

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("task store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsFatal reports whether err means the store handle can no longer be used.
func IsFatal(err error) bool {
	return errors.Is(err, ErrClosed) || errors.Is(err, sql.ErrConnDone)
}
