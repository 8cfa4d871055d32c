package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

func TestConditionValidate(t *testing.T) {
	tests := []struct {
		name    string
		cond    store.Condition
		wantErr bool
	}{
		{"name string", store.Eq(store.FieldName, "Bob"), false},
		{"age int", store.Eq(store.FieldAge, 20), false},
		{"food string", store.Contains("Burritos"), false},
		{"id string", store.Eq(store.FieldID, "x"), false},
		{"age as string", store.Eq(store.FieldAge, "20"), true},
		{"name as int", store.Eq(store.FieldName, 1), true},
		{"unknown field", store.Eq("email", "a@b"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cond.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, store.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFilterMatch(t *testing.T) {
	id := models.NewPersonID()
	p := models.Person{ID: id, Name: "Bob", Age: models.IntPtr(35), FavoriteFoods: []string{"Burger"}}

	assert.True(t, store.Filter{}.Match(&p))
	assert.True(t, store.Where(store.Eq(store.FieldName, "Bob"), store.Contains("Burger")).Match(&p))
	assert.False(t, store.Where(store.Eq(store.FieldName, "Bob"), store.Contains("Sushi")).Match(&p))
	assert.True(t, store.Where(store.Eq(store.FieldAge, 35)).Match(&p))
	assert.True(t, store.Where(store.Eq(store.FieldID, id.String())).Match(&p))
	assert.False(t, store.Where(store.Eq(store.FieldID, "garbage")).Match(&p))

	noAge := models.Person{Name: "Bob"}
	assert.False(t, store.Where(store.Eq(store.FieldAge, 0)).Match(&noAge))
}

func TestPatchApply(t *testing.T) {
	p := models.Person{Name: "Bob", Age: models.IntPtr(35), FavoriteFoods: []string{"Burger"}}
	store.Patch{Age: models.IntPtr(20)}.Apply(&p)

	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, 20, *p.Age)
	assert.Equal(t, []string{"Burger"}, p.FavoriteFoods)

	blank := ""
	require.ErrorIs(t, store.Patch{Name: &blank}.Validate(), store.ErrValidation)
	assert.True(t, store.Patch{}.IsEmpty())
}

func TestSortCompareAbsentAgeFirst(t *testing.T) {
	s := store.Sort{Field: store.FieldAge}
	young := models.Person{Age: models.IntPtr(1)}
	unknown := models.Person{}

	assert.Negative(t, s.Compare(&unknown, &young))
	assert.Positive(t, s.Compare(&young, &unknown))
	assert.Zero(t, s.Compare(&unknown, &unknown))

	s.Desc = true
	assert.Positive(t, s.Compare(&unknown, &young))
}

func TestProjection(t *testing.T) {
	require.NoError(t, store.Exclude(store.FieldAge).Validate())
	require.ErrorIs(t, store.Projection{
		Include: []store.Field{store.FieldName},
		Exclude: []store.Field{store.FieldAge},
	}.Validate(), store.ErrInvalidQuery)
	require.ErrorIs(t, store.Exclude("shoeSize").Validate(), store.ErrInvalidQuery)

	assert.Equal(t,
		[]store.Field{store.FieldID, store.FieldName, store.FieldFavoriteFoods},
		store.Exclude(store.FieldAge).Kept())
	assert.Equal(t,
		[]store.Field{store.FieldID, store.FieldName},
		store.Include(store.FieldName).Kept())
	assert.Equal(t, store.Fields, store.Projection{}.Kept())
}

// Run must behave as filter, then sort, then limit, then projection. The
// limit is applied after sorting, so the two alphabetically first matches
// come back even though they were inserted last.
func TestQueryRunOrder(t *testing.T) {
	people := []models.Person{
		{Name: "Zoe", Age: models.IntPtr(22), FavoriteFoods: []string{"Burritos"}},
		{Name: "Yan", Age: models.IntPtr(23), FavoriteFoods: []string{"Burritos"}},
		{Name: "Mia", Age: models.IntPtr(33), FavoriteFoods: []string{"Pizza"}},
		{Name: "Bea", Age: models.IntPtr(44), FavoriteFoods: []string{"Burritos"}},
		{Name: "Abe", Age: models.IntPtr(55), FavoriteFoods: []string{"Burritos"}},
	}
	q := store.Query{
		Filter:     store.Where(store.Contains("Burritos")),
		Sort:       store.Asc(store.FieldName),
		Limit:      2,
		Projection: store.Exclude(store.FieldAge),
	}

	got := q.Run(people)
	require.Len(t, got, 2)
	assert.Equal(t, "Abe", got[0].Name)
	assert.Equal(t, "Bea", got[1].Name)
	assert.Nil(t, got[0].Age)
	assert.Nil(t, got[1].Age)

	// input untouched
	assert.Equal(t, 55, *people[4].Age)
}

func TestQueryValidate(t *testing.T) {
	require.NoError(t, store.Query{}.Validate())
	require.ErrorIs(t, store.Query{Limit: -1}.Validate(), store.ErrInvalidQuery)
	require.ErrorIs(t, store.Query{Sort: store.Asc(store.FieldFavoriteFoods)}.Validate(), store.ErrInvalidQuery)
	require.ErrorIs(t, store.Query{Filter: store.Where(store.Eq(store.FieldAge, "x"))}.Validate(), store.ErrInvalidQuery)
}
