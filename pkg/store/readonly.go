package store

import (
	"context"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

// ReadOnlyStore wraps a Store and rejects writes while isReadOnly reports
// true. Reads always pass through.
//
// The state is read on every call, so the application can toggle it at
// runtime without rebuilding the store.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

// NewReadOnlyStore creates a new read-only wrapper for a store
func NewReadOnlyStore(store Store, isReadOnly func() bool) *ReadOnlyStore {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

func (r *ReadOnlyStore) checkReadOnly(op string) error {
	if r.isReadOnly() {
		return &StoreError{Op: op, Err: ErrReadOnly}
	}
	return nil
}

func (r *ReadOnlyStore) Create(ctx context.Context, p models.Person) (*models.Person, error) {
	if err := r.checkReadOnly("create"); err != nil {
		return nil, err
	}
	return r.Store.Create(ctx, p)
}

func (r *ReadOnlyStore) CreateMany(ctx context.Context, people []models.Person) ([]models.Person, error) {
	if err := r.checkReadOnly("create-many"); err != nil {
		return nil, err
	}
	return r.Store.CreateMany(ctx, people)
}

func (r *ReadOnlyStore) Save(ctx context.Context, p *models.Person) (*models.Person, error) {
	if err := r.checkReadOnly("save"); err != nil {
		return nil, err
	}
	return r.Store.Save(ctx, p)
}

func (r *ReadOnlyStore) ConditionalUpdate(ctx context.Context, filter Filter, patch Patch, opts UpdateOptions) (*models.Person, error) {
	if err := r.checkReadOnly("conditional-update"); err != nil {
		return nil, err
	}
	return r.Store.ConditionalUpdate(ctx, filter, patch, opts)
}

func (r *ReadOnlyStore) DeleteByID(ctx context.Context, id string) (*models.Person, error) {
	if err := r.checkReadOnly("delete-by-id"); err != nil {
		return nil, err
	}
	return r.Store.DeleteByID(ctx, id)
}

func (r *ReadOnlyStore) DeleteMany(ctx context.Context, filter Filter) (DeleteResult, error) {
	if err := r.checkReadOnly("delete-many"); err != nil {
		return DeleteResult{}, err
	}
	return r.Store.DeleteMany(ctx, filter)
}
