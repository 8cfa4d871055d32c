// Package surrealdb implements [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store.Store]
// on SurrealDB using native SurrealQL.
//
// People are documents in the "person" table. Record ids are
// person:⟨uuid⟩; [models.PersonID] marshals itself to a SurrealDB RecordID
// through CBOR, so ids can be passed straight into query variables.
//
// The connection uses the surrealcbor codec over gorilla/websocket:
//
//	s, err := surrealdb.Open(ctx, surrealdb.Config{
//		URL:       "ws://localhost:8000/rpc",
//		Namespace: "personapi",
//		Database:  "personapi",
//		Username:  "root",
//		Password:  "root",
//	})
//
// # Queries
//
// All statements are parameterized; values are bound to $variables and
// never formatted into the SurrealQL text.
//
// ConditionalUpdate, DeleteByID and DeleteMany are single statements and
// therefore atomic. Save is an UPDATE ... CONTENT on an existing record id;
// it never creates records.
//
// SurrealDB creates tables on first write, so opening a store needs no
// schema setup.
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

var _ store.Store = (*Store)(nil)

// Config holds the connection settings.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store is a SurrealDB-backed Person store.
type Store struct {
	db *surrealdb.DB
}

// Open connects, signs in when credentials are set and selects the
// namespace and database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.db.Version(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// isNotFound reports whether err is how the driver says "no record".
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

// run executes st and returns the records of its single result set.
func (s *Store) run(ctx context.Context, st statement) ([]models.Person, error) {
	res, err := surrealdb.Query[[]models.Person](ctx, s.db, st.SQL, st.Vars)
	if err != nil {
		return nil, err
	}
	if res == nil || len(*res) == 0 {
		return []models.Person{}, nil
	}
	r := (*res)[0]
	if r.Status != "OK" {
		return nil, fmt.Errorf("query %q failed with status %s", st.SQL, r.Status)
	}

	people := r.Result
	if people == nil {
		people = []models.Person{}
	}
	for i := range people {
		people[i].Normalize()
	}
	return people, nil
}

func (s *Store) Create(ctx context.Context, p models.Person) (*models.Person, error) {
	if err := store.Validate(&p); err != nil {
		return nil, store.Wrap("create", err)
	}
	p = p.Clone()
	p.ID = models.NewPersonID()
	p.Normalize()

	created, err := surrealdb.Create[models.Person](ctx, s.db, p.ID.RecordID(), p)
	if err != nil {
		return nil, store.Wrap("create", err)
	}
	created.Normalize()
	return created, nil
}

func (s *Store) CreateMany(ctx context.Context, people []models.Person) ([]models.Person, error) {
	rows := make([]models.Person, len(people))
	ptrs := make([]*models.Person, len(people))
	for i := range people {
		rows[i] = people[i].Clone()
		rows[i].ID = models.NewPersonID()
		rows[i].Normalize()
		ptrs[i] = &rows[i]
	}
	if err := store.Validate(ptrs...); err != nil {
		return nil, store.Wrap("create-many", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	// one INSERT statement, so a failure leaves nothing behind
	inserted, err := surrealdb.Insert[models.Person](ctx, s.db, surrealmodels.Table(models.PersonTable), rows)
	if err != nil {
		return nil, store.Wrap("create-many", err)
	}
	if inserted == nil || len(*inserted) != len(rows) {
		return nil, store.Wrap("create-many", fmt.Errorf("inserted %d of %d people", lenOf(inserted), len(rows)))
	}

	// INSERT returns records in input order; keep the caller's order by id
	// anyway in case a server reorders them.
	byID := make(map[models.PersonID]models.Person, len(rows))
	for _, p := range *inserted {
		p.Normalize()
		byID[p.ID] = p
	}
	for i := range rows {
		if p, ok := byID[rows[i].ID]; ok {
			rows[i] = p
		}
	}
	return rows, nil
}

func lenOf(people *[]models.Person) int {
	if people == nil {
		return 0
	}
	return len(*people)
}

func (s *Store) FindByField(ctx context.Context, field store.Field, value any) ([]models.Person, error) {
	return s.query(ctx, "find-by-field", store.Query{Filter: store.Where(store.Eq(field, value))})
}

func (s *Store) FindOneByField(ctx context.Context, field store.Field, value any) (*models.Person, error) {
	found, err := s.query(ctx, "find-one-by-field", store.Query{Filter: store.Where(store.Eq(field, value)), Limit: 1})
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

	p, err := surrealdb.Select[models.Person](ctx, s.db, pid.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, store.Wrap("find-by-id", err)
	}
	if p == nil || p.ID.IsZero() {
		return nil, nil
	}
	p.Normalize()
	return p, nil
}

func (s *Store) Save(ctx context.Context, p *models.Person) (*models.Person, error) {
	if err := store.Validate(p); err != nil {
		return nil, store.Wrap("save", err)
	}
	saved := p.Clone()
	saved.Normalize()

	updated, err := s.run(ctx, statement{
		SQL: "UPDATE $id CONTENT $person RETURN AFTER",
		Vars: map[string]any{
			"id":     saved.ID.RecordID(),
			"person": saved,
		},
	})
	if err != nil {
		return nil, store.Wrap("save", err)
	}
	if len(updated) == 0 {
		return nil, &store.StoreError{Op: "save", Err: fmt.Errorf("%w: %s", store.ErrNotFound, saved.ID)}
	}
	return &updated[0], nil
}

func (s *Store) ConditionalUpdate(ctx context.Context, filter store.Filter, patch store.Patch, opts store.UpdateOptions) (*models.Person, error) {
	const op = "conditional-update"
	if err := filter.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}
	if err := patch.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}

	st, ok := conditionalUpdateStatement(filter, patch, opts.ReturnUpdated)
	if !ok {
		return nil, nil
	}
	updated, err := s.run(ctx, st)
	if err != nil {
		return nil, store.Wrap(op, err)
	}
	if len(updated) == 0 {
		return nil, nil
	}
	return &updated[0], nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) (*models.Person, error) {
	pid, err := models.ParsePersonID(id)
	if err != nil {
		return nil, nil
	}

	removed, err := s.run(ctx, statement{
		SQL:  "DELETE $id RETURN BEFORE",
		Vars: map[string]any{"id": pid.RecordID()},
	})
	if err != nil {
		return nil, store.Wrap("delete-by-id", err)
	}
	if len(removed) == 0 || removed[0].ID.IsZero() {
		return nil, nil
	}
	return &removed[0], nil
}

func (s *Store) DeleteMany(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	if err := filter.Validate(); err != nil {
		return store.DeleteResult{}, store.Wrap("delete-many", err)
	}

	st, ok := deleteStatement(filter)
	if !ok {
		return store.DeleteResult{Acknowledged: true}, nil
	}
	removed, err := s.run(ctx, st)
	if err != nil {
		return store.DeleteResult{}, store.Wrap("delete-many", err)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: int64(len(removed))}, nil
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]models.Person, error) {
	return s.query(ctx, "query", q)
}

func (s *Store) query(ctx context.Context, op string, q store.Query) ([]models.Person, error) {
	if err := q.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}

	st, ok := selectStatement(q)
	if !ok {
		return []models.Person{}, nil
	}
	people, err := s.run(ctx, st)
	if err != nil {
		return nil, store.Wrap(op, err)
	}
	for i := range people {
		q.Projection.Apply(&people[i])
	}
	return people, nil
}
