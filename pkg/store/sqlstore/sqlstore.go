// Package sqlstore implements [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store.Store]
// on a relational database through GORM.
//
// Two dialects are supported:
//
//   - postgres, through gorm.io/driver/postgres (pgx underneath), for
//     production deployments
//   - sqlite, through gorm.io/driver/sqlite (mattn/go-sqlite3), for local
//     runs and tests; ":memory:" works
//
// People live in one "people" table. FavoriteFoods is a JSON array in a
// text column, so the "contains" condition is dialect specific: a jsonb
// containment test on PostgreSQL and a json_each lookup on SQLite.
//
// ConditionalUpdate and DeleteByID run inside a transaction that reads the
// target row with SELECT ... FOR UPDATE (SQLite ignores the locking clause
// and serialises writers instead), so each is atomic.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var _ store.Store = (*Store)(nil)

// columns maps query fields to column names.
var columns = map[store.Field]string{
	store.FieldID:            "id",
	store.FieldName:          "name",
	store.FieldAge:           "age",
	store.FieldFavoriteFoods: "favorite_foods",
}

// Store is a GORM-backed Person store.
type Store struct {
	db      *gorm.DB
	dialect string
}

// Open connects to dsn with the named dialect and makes sure the people
// table exists.
func Open(dialect, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL dialect %q", dialect)
	}
	return New(dialector)
}

// New builds a Store on an arbitrary GORM dialector.
func New(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dialect: db.Dialector.Name()}

	if s.dialect == DialectSQLite {
		// one connection: SQLite has a single writer and ":memory:" databases
		// are per connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.Person{}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create people table: %w", err)
	}
	return s, nil
}

// DB exposes the underlying GORM handle, mainly for tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// where adds the filter conditions to db. A condition that can never
// match, such as an id that does not parse, becomes a false predicate.
func (s *Store) where(db *gorm.DB, filter store.Filter) (*gorm.DB, error) {
	for _, c := range filter {
		switch c.Field {
		case store.FieldID:
			id, err := models.ParsePersonID(c.Value.(string))
			if err != nil {
				db = db.Where("1 = 0")
				continue
			}
			db = db.Where("id = ?", id)
		case store.FieldName, store.FieldAge:
			db = db.Where(columns[c.Field]+" = ?", c.Value)
		case store.FieldFavoriteFoods:
			expr, arg, err := s.contains(c.Value.(string))
			if err != nil {
				return nil, err
			}
			db = db.Where(expr, arg)
		}
	}
	return db, nil
}

func (s *Store) contains(food string) (string, any, error) {
	switch s.dialect {
	case DialectPostgres:
		needle, err := json.Marshal([]string{food})
		if err != nil {
			return "", nil, err
		}
		return "favorite_foods::jsonb @> ?::jsonb", string(needle), nil
	case DialectSQLite:
		return "EXISTS (SELECT 1 FROM json_each(people.favorite_foods) WHERE json_each.value = ?)", food, nil
	}
	return "", nil, fmt.Errorf("%w: contains is not supported on %s", store.ErrInvalidQuery, s.dialect)
}

func (s *Store) Create(ctx context.Context, p models.Person) (*models.Person, error) {
	if err := store.Validate(&p); err != nil {
		return nil, store.Wrap("create", err)
	}
	p = p.Clone()
	p.ID = models.NewPersonID()
	p.Normalize()

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, store.Wrap("create", err)
	}
	return &p, nil
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

	// a single multi-row INSERT
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, store.Wrap("create-many", err)
	}
	return rows, nil
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

	var p models.Person
	err = s.db.WithContext(ctx).Take(&p, "id = ?", pid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, store.Wrap("find-by-id", err)
	}
	p.Normalize()
	return &p, nil
}

func (s *Store) Save(ctx context.Context, p *models.Person) (*models.Person, error) {
	if err := store.Validate(p); err != nil {
		return nil, store.Wrap("save", err)
	}
	saved := p.Clone()
	saved.Normalize()

	res := s.db.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", saved.ID).
		Select("name", "age", "favorite_foods").
		Updates(&saved)
	if res.Error != nil {
		return nil, store.Wrap("save", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &store.StoreError{Op: "save", Err: fmt.Errorf("%w: %s", store.ErrNotFound, saved.ID)}
	}
	return &saved, nil
}

func (s *Store) ConditionalUpdate(ctx context.Context, filter store.Filter, patch store.Patch, opts store.UpdateOptions) (*models.Person, error) {
	const op = "conditional-update"
	if err := filter.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}
	if err := patch.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}

	var before, after models.Person
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.where(tx.Clauses(clause.Locking{Strength: "UPDATE"}), filter)
		if err != nil {
			return err
		}
		if err := q.Take(&before).Error; err != nil {
			return err
		}
		before.Normalize()

		after = before.Clone()
		patch.Apply(&after)
		return tx.Model(&models.Person{}).
			Where("id = ?", after.ID).
			Select("name", "age", "favorite_foods").
			Updates(&after).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, store.Wrap(op, err)
	}

	if opts.ReturnUpdated {
		return &after, nil
	}
	return &before, nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) (*models.Person, error) {
	pid, err := models.ParsePersonID(id)
	if err != nil {
		return nil, nil
	}

	var removed models.Person
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&removed, "id = ?", pid).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Person{}, "id = ?", pid).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, store.Wrap("delete-by-id", err)
	}
	removed.Normalize()
	return &removed, nil
}

func (s *Store) DeleteMany(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	if err := filter.Validate(); err != nil {
		return store.DeleteResult{}, store.Wrap("delete-many", err)
	}

	// an empty filter deletes every row, which GORM refuses by default
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	q, err := s.where(db, filter)
	if err != nil {
		return store.DeleteResult{}, store.Wrap("delete-many", err)
	}
	res := q.Delete(&models.Person{})
	if res.Error != nil {
		return store.DeleteResult{}, store.Wrap("delete-many", res.Error)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: res.RowsAffected}, nil
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]models.Person, error) {
	return s.query(ctx, "query", q)
}

func (s *Store) query(ctx context.Context, op string, q store.Query) ([]models.Person, error) {
	if err := q.Validate(); err != nil {
		return nil, store.Wrap(op, err)
	}

	db, err := s.where(s.db.WithContext(ctx).Model(&models.Person{}), q.Filter)
	if err != nil {
		return nil, store.Wrap(op, err)
	}
	if q.Sort != nil {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: columns[q.Sort.Field]},
			Desc:   q.Sort.Desc,
		})
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if !q.Projection.IsZero() {
		kept := q.Projection.Kept()
		cols := make([]string, 0, len(kept))
		for _, f := range kept {
			cols = append(cols, columns[f])
		}
		db = db.Select(cols)
	}

	people := []models.Person{}
	if err := db.Find(&people).Error; err != nil {
		return nil, store.Wrap(op, err)
	}
	for i := range people {
		people[i].Normalize()
		q.Projection.Apply(&people[i])
	}
	return people, nil
}
