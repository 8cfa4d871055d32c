package store

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

// Mutation edits a loaded person in place.
type Mutation func(p *models.Person) error

// AppendFood returns a Mutation that appends food to the favourite foods.
func AppendFood(food string) Mutation {
	return func(p *models.Person) error {
		p.FavoriteFoods = append(p.FavoriteFoods, food)
		return nil
	}
}

// LoadMutateSave loads the person with id, applies mutate and saves the
// full record back.
//
// This is two round trips, FindByID then Save, with no version check and
// no retry in between. Two concurrent calls for the same id can both load
// the same state; the second Save then overwrites the first one's change.
// Use ConditionalUpdate when the change can be expressed as a patch.
//
// A missing or malformed id fails with ErrNotFound.
func LoadMutateSave(ctx context.Context, s Store, id string, mutate Mutation) (*models.Person, error) {
	const op = "load-mutate-save"

	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &StoreError{Op: op, Err: fmt.Errorf("%w: %s", ErrNotFound, id)}
	}

	if err := mutate(p); err != nil {
		return nil, Wrap(op, err)
	}
	if err := Validate(p); err != nil {
		return nil, Wrap(op, err)
	}

	return s.Save(ctx, p)
}
