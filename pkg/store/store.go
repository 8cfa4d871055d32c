// Package store provides the persistence boundary for Person documents.
//
// The [Store] interface is implemented by three backends:
//
//   - [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/surrealdb.Store]: SurrealDB through
//     native SurrealQL and the surrealcbor codec
//   - [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/sqlstore.Store]: GORM over PostgreSQL
//     or SQLite
//   - [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/memory.Store]: an in-process map, used
//     for tests and for running without a database
//
// # Results and errors
//
// Every operation either succeeds or fails with a [*StoreError]. A lookup
// that finds nothing is a success: single-record operations return a nil
// *models.Person and a nil error, sequence operations return an empty
// (never nil) slice. Callers that need to tell failures apart use
// errors.Is with [ErrNotFound], [ErrValidation], [ErrInvalidQuery] or
// [ErrReadOnly]; the HTTP layer deliberately does not.
//
// A malformed id never reaches a backend as an error. FindByID and
// DeleteByID report it as not found, the same as a well-formed id that
// does not exist.
//
// # Wrappers
//
// [ReadOnlyStore] and [InstrumentedStore] embed a Store and add behaviour
// around it. They compose: the application stacks instrumentation on top of
// the read-only guard on top of the backend.
package store

import (
	"context"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

// Store is the Entity Store for Person documents.
type Store interface {
	// Create validates p, assigns a fresh id and stores it.
	Create(ctx context.Context, p models.Person) (*models.Person, error)

	// CreateMany stores people in one write and returns them in input order.
	// If any person is invalid nothing is written.
	CreateMany(ctx context.Context, people []models.Person) ([]models.Person, error)

	// FindByField returns every person whose field matches value.
	FindByField(ctx context.Context, field Field, value any) ([]models.Person, error)

	// FindOneByField returns the first match, or nil when there is none.
	FindOneByField(ctx context.Context, field Field, value any) (*models.Person, error)

	// FindByID returns the person with the given id, or nil.
	FindByID(ctx context.Context, id string) (*models.Person, error)

	// Save overwrites the stored record with p.ID. It fails with ErrNotFound
	// when that record no longer exists.
	Save(ctx context.Context, p *models.Person) (*models.Person, error)

	// ConditionalUpdate atomically applies patch to one person matching
	// filter and returns it as it was before or after the patch, depending
	// on opts.ReturnUpdated. It returns nil when nothing matches.
	ConditionalUpdate(ctx context.Context, filter Filter, patch Patch, opts UpdateOptions) (*models.Person, error)

	// DeleteByID removes the person and returns what was removed, or nil.
	DeleteByID(ctx context.Context, id string) (*models.Person, error)

	// DeleteMany removes every person matching filter.
	DeleteMany(ctx context.Context, filter Filter) (DeleteResult, error)

	// Query filters, sorts, limits and projects in that order.
	Query(ctx context.Context, q Query) ([]models.Person, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
