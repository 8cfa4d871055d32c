// Package storetest is a behavioural test suite shared by every
// [store.Store] backend.
//
// A backend test calls [Run] with a function that returns an empty store:
//
//	func TestStore(t *testing.T) {
//		storetest.Run(t, func(t *testing.T) store.Store {
//			return memory.New()
//		})
//	}
//
// Each case opens its own store, so open must hand out an isolated or
// freshly emptied instance every time.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

// Opener returns an empty store for one test case.
type Opener func(t *testing.T) store.Store

// Run executes the suite against the stores produced by open.
func Run(t *testing.T, open Opener) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Create", testCreate},
		{"CreateRejectsBlankName", testCreateRejectsBlankName},
		{"CreateMany", testCreateMany},
		{"CreateManyIsAllOrNothing", testCreateManyIsAllOrNothing},
		{"FindByField", testFindByField},
		{"FindOneByField", testFindOneByField},
		{"FindByIDMissing", testFindByIDMissing},
		{"Save", testSave},
		{"SaveMissing", testSaveMissing},
		{"LoadMutateSave", testLoadMutateSave},
		{"LoadMutateSaveMissing", testLoadMutateSaveMissing},
		{"ConditionalUpdate", testConditionalUpdate},
		{"ConditionalUpdateReturnsOriginal", testConditionalUpdateReturnsOriginal},
		{"ConditionalUpdateTouchesOneRecord", testConditionalUpdateTouchesOneRecord},
		{"ConditionalUpdateNoMatch", testConditionalUpdateNoMatch},
		{"DeleteByID", testDeleteByID},
		{"DeleteMany", testDeleteMany},
		{"QueryChain", testQueryChain},
		{"QueryInclude", testQueryInclude},
		{"QuerySortsOnDroppedField", testQuerySortsOnDroppedField},
		{"QueryByAge", testQueryByAge},
		{"QueryRejectsBadSort", testQueryRejectsBadSort},
		{"Ping", testPing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			tc.fn(t, s)
		})
	}
}

func person(name string, age *int, foods ...string) models.Person {
	if foods == nil {
		foods = []string{}
	}
	return models.Person{Name: name, Age: age, FavoriteFoods: foods}
}

func mustCreate(t *testing.T, s store.Store, people ...models.Person) []models.Person {
	t.Helper()
	created, err := s.CreateMany(context.Background(), people)
	require.NoError(t, err)
	require.Len(t, created, len(people))
	return created
}

func requireStoreError(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	var se *store.StoreError
	require.True(t, errors.As(err, &se), "want *store.StoreError, got %T: %v", err, err)
	if target != nil {
		require.ErrorIs(t, err, target)
	}
}

func testCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	in := person("sami saafi", models.IntPtr(21), "Pizza", "Burger")

	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "sami saafi", created.Name)
	require.NotNil(t, created.Age)
	assert.Equal(t, 21, *created.Age)
	assert.Equal(t, []string{"Pizza", "Burger"}, created.FavoriteFoods)

	found, err := s.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, *created, *found)
}

func testCreateRejectsBlankName(t *testing.T, s store.Store) {
	_, err := s.Create(context.Background(), person("", models.IntPtr(3)))
	requireStoreError(t, err, store.ErrValidation)
}

func testCreateMany(t *testing.T, s store.Store) {
	created := mustCreate(t, s,
		person("Alice", models.IntPtr(30), "Sushi", "Pasta"),
		person("Bob", models.IntPtr(35), "Burger", "Ice Cream"),
	)

	assert.Equal(t, "Alice", created[0].Name)
	assert.Equal(t, "Bob", created[1].Name)
	assert.NotEqual(t, created[0].ID, created[1].ID)
	assert.Equal(t, []string{"Burger", "Ice Cream"}, created[1].FavoriteFoods)
}

func testCreateManyIsAllOrNothing(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.CreateMany(ctx, []models.Person{
		person("Alice", models.IntPtr(30)),
		person("", nil),
	})
	requireStoreError(t, err, store.ErrValidation)

	all, err := s.Query(ctx, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testFindByField(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Bob", models.IntPtr(35)),
		person("Alice", models.IntPtr(30)),
		person("Bob", models.IntPtr(40)),
	)

	bobs, err := s.FindByField(ctx, store.FieldName, "Bob")
	require.NoError(t, err)
	assert.Len(t, bobs, 2)
	for _, b := range bobs {
		assert.Equal(t, "Bob", b.Name)
	}

	nobody, err := s.FindByField(ctx, store.FieldName, "Zed")
	require.NoError(t, err)
	assert.NotNil(t, nobody)
	assert.Empty(t, nobody)
}

func testFindOneByField(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Alice", nil, "Sushi"),
		person("Carol", nil, "Burritos", "Tacos"),
	)

	found, err := s.FindOneByField(ctx, store.FieldFavoriteFoods, "Tacos")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Carol", found.Name)

	missing, err := s.FindOneByField(ctx, store.FieldFavoriteFoods, "Haggis")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testFindByIDMissing(t *testing.T, s store.Store) {
	ctx := context.Background()

	found, err := s.FindByID(ctx, models.NewPersonID().String())
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = s.FindByID(ctx, "definitely-not-an-id")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func testSave(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, person("Dana", models.IntPtr(50), "Soup"))[0]

	created.Name = "Dana B."
	created.Age = nil
	saved, err := s.Save(ctx, &created)
	require.NoError(t, err)
	assert.Equal(t, created, *saved)

	found, err := s.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Dana B.", found.Name)
	assert.Nil(t, found.Age)
}

func testSaveMissing(t *testing.T, s store.Store) {
	p := person("Ghost", nil)
	p.ID = models.NewPersonID()
	_, err := s.Save(context.Background(), &p)
	requireStoreError(t, err, store.ErrNotFound)
}

func testLoadMutateSave(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, person("Eve", models.IntPtr(28), "Pizza"))[0]

	updated, err := store.LoadMutateSave(ctx, s, created.ID.String(), store.AppendFood("Hamburger"))
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, []string{"Pizza", "Hamburger"}, updated.FavoriteFoods)
	assert.Equal(t, "Eve", updated.Name)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 28, *updated.Age)

	found, err := s.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"Pizza", "Hamburger"}, found.FavoriteFoods)
}

func testLoadMutateSaveMissing(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := store.LoadMutateSave(ctx, s, models.NewPersonID().String(), store.AppendFood("Hamburger"))
	requireStoreError(t, err, store.ErrNotFound)

	_, err = store.LoadMutateSave(ctx, s, "nope", store.AppendFood("Hamburger"))
	requireStoreError(t, err, store.ErrNotFound)
}

func testConditionalUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	bob := mustCreate(t, s, person("Bob", models.IntPtr(35), "Burger", "Ice Cream"))[0]

	updated, err := s.ConditionalUpdate(ctx,
		store.Where(store.Eq(store.FieldName, "Bob")),
		store.Patch{Age: models.IntPtr(20)},
		store.UpdateOptions{ReturnUpdated: true},
	)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, bob.ID, updated.ID)
	assert.Equal(t, "Bob", updated.Name)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 20, *updated.Age)
	assert.Equal(t, []string{"Burger", "Ice Cream"}, updated.FavoriteFoods)
}

func testConditionalUpdateReturnsOriginal(t *testing.T, s store.Store) {
	ctx := context.Background()
	bob := mustCreate(t, s, person("Bob", models.IntPtr(35)))[0]

	before, err := s.ConditionalUpdate(ctx,
		store.Where(store.Eq(store.FieldName, "Bob")),
		store.Patch{Age: models.IntPtr(20)},
		store.UpdateOptions{},
	)
	require.NoError(t, err)
	require.NotNil(t, before)
	require.NotNil(t, before.Age)
	assert.Equal(t, 35, *before.Age)

	found, err := s.FindByID(ctx, bob.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Age)
	assert.Equal(t, 20, *found.Age)
}

func testConditionalUpdateTouchesOneRecord(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Bob", models.IntPtr(35)),
		person("Bob", models.IntPtr(36)),
	)

	_, err := s.ConditionalUpdate(ctx,
		store.Where(store.Eq(store.FieldName, "Bob")),
		store.Patch{Age: models.IntPtr(20)},
		store.UpdateOptions{ReturnUpdated: true},
	)
	require.NoError(t, err)

	twenty, err := s.FindByField(ctx, store.FieldAge, 20)
	require.NoError(t, err)
	assert.Len(t, twenty, 1)
}

func testConditionalUpdateNoMatch(t *testing.T, s store.Store) {
	updated, err := s.ConditionalUpdate(context.Background(),
		store.Where(store.Eq(store.FieldName, "Nobody")),
		store.Patch{Age: models.IntPtr(20)},
		store.UpdateOptions{ReturnUpdated: true},
	)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func testDeleteByID(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, person("Frank", models.IntPtr(60), "Stew"))[0]

	removed, err := s.DeleteByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, created, *removed)

	again, err := s.DeleteByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Nil(t, again)

	malformed, err := s.DeleteByID(ctx, "not-an-id")
	require.NoError(t, err)
	assert.Nil(t, malformed)
}

func testDeleteMany(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Mary", nil),
		person("Alice", nil),
		person("Mary", models.IntPtr(44)),
	)
	marys := store.Where(store.Eq(store.FieldName, "Mary"))

	res, err := s.DeleteMany(ctx, marys)
	require.NoError(t, err)
	assert.Equal(t, store.DeleteResult{Acknowledged: true, DeletedCount: 2}, res)

	res, err = s.DeleteMany(ctx, marys)
	require.NoError(t, err)
	assert.Equal(t, store.DeleteResult{Acknowledged: true, DeletedCount: 0}, res)

	left, err := s.Query(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Alice", left[0].Name)
}

func testQueryChain(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Zoe", models.IntPtr(22), "Burritos"),
		person("Adam", models.IntPtr(41), "Burritos", "Nachos"),
		person("Mia", models.IntPtr(33), "Pizza"),
		person("Liam", models.IntPtr(19), "Tacos", "Burritos"),
	)

	got, err := s.Query(ctx, store.Query{
		Filter:     store.Where(store.Contains("Burritos")),
		Sort:       store.Asc(store.FieldName),
		Limit:      2,
		Projection: store.Exclude(store.FieldAge),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Adam", got[0].Name)
	assert.Equal(t, "Liam", got[1].Name)
	for _, p := range got {
		assert.False(t, p.ID.IsZero())
		assert.Nil(t, p.Age)
		assert.Contains(t, p.FavoriteFoods, "Burritos")
	}
}

func testQueryInclude(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, person("Nora", models.IntPtr(27), "Ramen"))

	got, err := s.Query(ctx, store.Query{Projection: store.Include(store.FieldName)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].ID.IsZero())
	assert.Equal(t, "Nora", got[0].Name)
	assert.Nil(t, got[0].Age)
	assert.Nil(t, got[0].FavoriteFoods)
}

func testQuerySortsOnDroppedField(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Middle", models.IntPtr(40), "Soup"),
		person("Eldest", models.IntPtr(70), "Soup"),
		person("Youngest", models.IntPtr(12), "Soup"),
	)

	got, err := s.Query(ctx, store.Query{
		Sort:       &store.Sort{Field: store.FieldAge, Desc: true},
		Projection: store.Include(store.FieldName),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
		assert.False(t, p.ID.IsZero())
		assert.Nil(t, p.Age)
		assert.Nil(t, p.FavoriteFoods)
	}
	assert.Equal(t, []string{"Eldest", "Middle", "Youngest"}, names)

	got, err = s.Query(ctx, store.Query{
		Sort:       store.Asc(store.FieldAge),
		Projection: store.Exclude(store.FieldAge),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Youngest", got[0].Name)
	assert.Equal(t, "Eldest", got[2].Name)
	for _, p := range got {
		assert.Nil(t, p.Age)
		assert.Equal(t, []string{"Soup"}, p.FavoriteFoods)
	}
}

func testQueryByAge(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s,
		person("Old", models.IntPtr(90)),
		person("Young", models.IntPtr(9)),
		person("Unknown", nil),
	)

	got, err := s.Query(ctx, store.Query{
		Filter: store.Where(store.Eq(store.FieldAge, 9)),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Young", got[0].Name)

	desc, err := s.Query(ctx, store.Query{
		Filter: store.Where(store.Eq(store.FieldName, "Old")),
		Sort:   &store.Sort{Field: store.FieldAge, Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, desc, 1)
}

func testQueryRejectsBadSort(t *testing.T, s store.Store) {
	_, err := s.Query(context.Background(), store.Query{
		Sort: store.Asc(store.FieldFavoriteFoods),
	})
	requireStoreError(t, err, store.ErrInvalidQuery)
}

func testPing(t *testing.T, s store.Store) {
	require.NoError(t, s.Ping(context.Background()))
}
