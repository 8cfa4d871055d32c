package store

import (
	"context"
	"time"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

// OpRecorder receives one observation per store operation.
type OpRecorder interface {
	RecordStoreOp(ctx context.Context, op string, elapsed time.Duration, err error)
}

// InstrumentedStore reports the latency and outcome of every operation to
// an OpRecorder.
type InstrumentedStore struct {
	Store
	rec OpRecorder
}

func NewInstrumentedStore(s Store, rec OpRecorder) *InstrumentedStore {
	return &InstrumentedStore{Store: s, rec: rec}
}

func (s *InstrumentedStore) observe(ctx context.Context, op string, start time.Time, err error) {
	s.rec.RecordStoreOp(ctx, op, time.Since(start), err)
}

func (s *InstrumentedStore) Create(ctx context.Context, p models.Person) (*models.Person, error) {
	start := time.Now()
	out, err := s.Store.Create(ctx, p)
	s.observe(ctx, "create", start, err)
	return out, err
}

func (s *InstrumentedStore) CreateMany(ctx context.Context, people []models.Person) ([]models.Person, error) {
	start := time.Now()
	out, err := s.Store.CreateMany(ctx, people)
	s.observe(ctx, "create-many", start, err)
	return out, err
}

func (s *InstrumentedStore) FindByField(ctx context.Context, field Field, value any) ([]models.Person, error) {
	start := time.Now()
	out, err := s.Store.FindByField(ctx, field, value)
	s.observe(ctx, "find-by-field", start, err)
	return out, err
}

func (s *InstrumentedStore) FindOneByField(ctx context.Context, field Field, value any) (*models.Person, error) {
	start := time.Now()
	out, err := s.Store.FindOneByField(ctx, field, value)
	s.observe(ctx, "find-one-by-field", start, err)
	return out, err
}

func (s *InstrumentedStore) FindByID(ctx context.Context, id string) (*models.Person, error) {
	start := time.Now()
	out, err := s.Store.FindByID(ctx, id)
	s.observe(ctx, "find-by-id", start, err)
	return out, err
}

func (s *InstrumentedStore) Save(ctx context.Context, p *models.Person) (*models.Person, error) {
	start := time.Now()
	out, err := s.Store.Save(ctx, p)
	s.observe(ctx, "save", start, err)
	return out, err
}

func (s *InstrumentedStore) ConditionalUpdate(ctx context.Context, filter Filter, patch Patch, opts UpdateOptions) (*models.Person, error) {
	start := time.Now()
	out, err := s.Store.ConditionalUpdate(ctx, filter, patch, opts)
	s.observe(ctx, "conditional-update", start, err)
	return out, err
}

func (s *InstrumentedStore) DeleteByID(ctx context.Context, id string) (*models.Person, error) {
	start := time.Now()
	out, err := s.Store.DeleteByID(ctx, id)
	s.observe(ctx, "delete-by-id", start, err)
	return out, err
}

func (s *InstrumentedStore) DeleteMany(ctx context.Context, filter Filter) (DeleteResult, error) {
	start := time.Now()
	out, err := s.Store.DeleteMany(ctx, filter)
	s.observe(ctx, "delete-many", start, err)
	return out, err
}

func (s *InstrumentedStore) Query(ctx context.Context, q Query) ([]models.Person, error) {
	start := time.Now()
	out, err := s.Store.Query(ctx, q)
	s.observe(ctx, "query", start, err)
	return out, err
}
