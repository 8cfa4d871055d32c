// Package memory provides an in-process implementation of
// [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store.Store].
//
// Records live in a map guarded by a mutex and keep insertion order, which
// is the order reads return them in when no sort is requested. Every value
// crossing the package boundary is a deep copy.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

// Compile-time assertion that Store satisfies the store.Store interface.
var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the random id source, for reproducible output.
func WithIDGenerator(next func() models.PersonID) Option {
	return func(s *Store) {
		s.newID = next
	}
}

// Store is a thread-safe, in-memory Person store.
type Store struct {
	mu     sync.RWMutex
	people map[models.PersonID]models.Person
	order  []models.PersonID
	newID  func() models.PersonID
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		people: make(map[models.PersonID]models.Person),
		newID:  models.NewPersonID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// insert must be called with mu held for writing.
func (s *Store) insert(p models.Person) models.Person {
	p = p.Clone()
	p.ID = s.newID()
	p.Normalize()
	s.people[p.ID] = p
	s.order = append(s.order, p.ID)
	return p.Clone()
}

// remove must be called with mu held for writing.
func (s *Store) remove(id models.PersonID) {
	delete(s.people, id)
	s.order = slices.DeleteFunc(s.order, func(x models.PersonID) bool { return x == id })
}

// snapshot returns the records in insertion order without copying them.
// It must be called with mu held.
func (s *Store) snapshot() []models.Person {
	out := make([]models.Person, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.people[id])
	}
	return out
}

// first returns the id of the first record matching filter.
// It must be called with mu held.
func (s *Store) first(filter store.Filter) (models.PersonID, bool) {
	for _, id := range s.order {
		p := s.people[id]
		if filter.Match(&p) {
			return id, true
		}
	}
	return models.PersonID{}, false
}

func (s *Store) Create(ctx context.Context, p models.Person) (*models.Person, error) {
	if err := store.Validate(&p); err != nil {
		return nil, store.Wrap("create", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.insert(p)
	return &created, nil
}

func (s *Store) CreateMany(ctx context.Context, people []models.Person) ([]models.Person, error) {
	ptrs := make([]*models.Person, len(people))
	for i := range people {
		ptrs[i] = &people[i]
	}
	if err := store.Validate(ptrs...); err != nil {
		return nil, store.Wrap("create-many", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]models.Person, 0, len(people))
	for _, p := range people {
		created = append(created, s.insert(p))
	}
	return created, nil
}

func (s *Store) FindByField(ctx context.Context, field store.Field, value any) ([]models.Person, error) {
	return s.query("find-by-field", store.Query{Filter: store.Where(store.Eq(field, value))})
}

func (s *Store) FindOneByField(ctx context.Context, field store.Field, value any) (*models.Person, error) {
	found, err := s.query("find-one-by-field", store.Query{Filter: store.Where(store.Eq(field, value)), Limit: 1})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Person, error) {
	pid, err := models.ParsePersonID(id)
	if err != nil {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.people[pid]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

func (s *Store) Save(ctx context.Context, p *models.Person) (*models.Person, error) {
	if err := store.Validate(p); err != nil {
		return nil, store.Wrap("save", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.people[p.ID]; !ok {
		return nil, &store.StoreError{Op: "save", Err: fmt.Errorf("%w: %s", store.ErrNotFound, p.ID)}
	}
	saved := p.Clone()
	saved.Normalize()
	s.people[p.ID] = saved
	out := saved.Clone()
	return &out, nil
}

func (s *Store) ConditionalUpdate(ctx context.Context, filter store.Filter, patch store.Patch, opts store.UpdateOptions) (*models.Person, error) {
	const op = "conditional-update"
	if err := filter.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}
	if err := patch.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.first(filter)
	if !ok {
		return nil, nil
	}
	before := s.people[id]
	after := before.Clone()
	patch.Apply(&after)
	s.people[id] = after

	out := before.Clone()
	if opts.ReturnUpdated {
		out = after.Clone()
	}
	return &out, nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) (*models.Person, error) {
	pid, err := models.ParsePersonID(id)
	if err != nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.people[pid]
	if !ok {
		return nil, nil
	}
	s.remove(pid)
	return &p, nil
}

func (s *Store) DeleteMany(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	if err := filter.Validate(); err != nil {
		return store.DeleteResult{}, store.Wrap("delete-many", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []models.PersonID
	for _, id := range s.order {
		p := s.people[id]
		if filter.Match(&p) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		s.remove(id)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: int64(len(doomed))}, nil
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]models.Person, error) {
	return s.query("query", q)
}

func (s *Store) query(op string, q store.Query) ([]models.Person, error) {
	if err := q.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return q.Run(s.snapshot()), nil
}

// Len returns the number of stored people.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people)
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
