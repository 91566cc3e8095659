package repositories

import (
	"errors"
	"fmt"

	"petstore/internal/models"
)

// ErrNotFound is returned when no row matches the given id.
var ErrNotFound = errors.New("record not found")

// StorageError wraps a failure of the underlying store. The enclosing
// transaction has been rolled back when it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SellConflictError reports that the sell predicate did not hold.
// Current is the row as read inside the same transaction.
type SellConflictError struct {
	Current   models.Product
	Requested int
}

func (e *SellConflictError) Error() string {
	return fmt.Sprintf("cannot sell %d units of product %d (active=%t, quantity=%d)",
		e.Requested, e.Current.ID, e.Current.Active, e.Current.Quantity)
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// passthrough keeps repository outcomes intact and wraps everything else.
func passthrough(op string, err error) error {
	var storageErr *StorageError
	var conflict *SellConflictError
	switch {
	case errors.Is(err, ErrNotFound), errors.As(err, &storageErr), errors.As(err, &conflict):
		return err
	default:
		return storageError(op, err)
	}
}
