package store

import (
	"errors"
	"fmt"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

var (
	// ErrNotFound is wrapped when an operation requires an existing record.
	ErrNotFound = errors.New("person not found")

	// ErrValidation is wrapped when a person breaks a schema invariant.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidQuery is wrapped when a filter, sort or projection is malformed.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrReadOnly is wrapped when a write reaches a read-only store.
	ErrReadOnly = errors.New("operation denied: store is read-only")
)

// StoreError is the single failure type returned by Store operations.
type StoreError struct {
	// Op names the operation that failed, e.g. "create" or "query".
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Wrap turns err into a *StoreError for op. A nil err stays nil and an
// error that already is a StoreError is returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Validate checks every person against the schema invariants. The error
// names the offending position and wraps ErrValidation.
func Validate(people ...*models.Person) error {
	for i, p := range people {
		if err := p.Validate(); err != nil {
			if len(people) == 1 {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			return fmt.Errorf("%w: person %d: %w", ErrValidation, i, err)
		}
	}
	return nil
}
