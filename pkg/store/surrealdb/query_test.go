package surrealdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

func TestSelectStatement(t *testing.T) {
	tests := []struct {
		name string
		q    store.Query
		sql  string
		vars map[string]any
	}{
		{
			name: "everything",
			q:    store.Query{},
			sql:  "SELECT * FROM person",
			vars: map[string]any{},
		},
		{
			name: "by name",
			q:    store.Query{Filter: store.Where(store.Eq(store.FieldName, "Bob"))},
			sql:  "SELECT * FROM person WHERE name = $p0",
			vars: map[string]any{"p0": "Bob"},
		},
		{
			name: "chain",
			q: store.Query{
				Filter:     store.Where(store.Contains("Burritos")),
				Sort:       store.Asc(store.FieldName),
				Limit:      2,
				Projection: store.Exclude(store.FieldAge),
			},
			sql:  "SELECT * OMIT age FROM person WHERE favoriteFoods CONTAINS $p0 ORDER BY name ASC LIMIT 2",
			vars: map[string]any{"p0": "Burritos"},
		},
		{
			name: "include and desc",
			q: store.Query{
				Filter:     store.Where(store.Eq(store.FieldAge, 20), store.Contains("Soup")),
				Sort:       &store.Sort{Field: store.FieldAge, Desc: true},
				Projection: store.Include(store.FieldName),
			},
			sql:  "SELECT id, name, age FROM person WHERE age = $p0 AND favoriteFoods CONTAINS $p1 ORDER BY age DESC",
			vars: map[string]any{"p0": 20, "p1": "Soup"},
		},
		{
			name: "include keeps sort field",
			q: store.Query{
				Sort:       store.Asc(store.FieldName),
				Projection: store.Include(store.FieldName),
			},
			sql:  "SELECT id, name FROM person ORDER BY name ASC",
			vars: map[string]any{},
		},
		{
			name: "exclude sort field",
			q: store.Query{
				Sort:       store.Asc(store.FieldAge),
				Projection: store.Exclude(store.FieldAge, store.FieldFavoriteFoods),
			},
			sql:  "SELECT * OMIT favoriteFoods FROM person ORDER BY age ASC",
			vars: map[string]any{},
		},
		{
			name: "exclude only sort field",
			q: store.Query{
				Sort:       store.Asc(store.FieldAge),
				Projection: store.Exclude(store.FieldAge),
			},
			sql:  "SELECT * FROM person ORDER BY age ASC",
			vars: map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := selectStatement(tt.q)
			require.True(t, ok)
			assert.Equal(t, tt.sql, st.SQL)
			assert.Equal(t, tt.vars, st.Vars)
		})
	}
}

func TestWhereClauseRecordID(t *testing.T) {
	id := models.NewPersonID()
	vars := map[string]any{}

	clause, ok := whereClause(store.Where(store.Eq(store.FieldID, id.String())), vars)
	require.True(t, ok)
	assert.Equal(t, " WHERE id = $p0", clause)
	assert.Equal(t, id.RecordID(), vars["p0"])

	_, ok = whereClause(store.Where(store.Eq(store.FieldID, "garbage")), map[string]any{})
	assert.False(t, ok)
}

func TestConditionalUpdateStatement(t *testing.T) {
	st, ok := conditionalUpdateStatement(
		store.Where(store.Eq(store.FieldName, "Bob")),
		store.Patch{Age: models.IntPtr(20)},
		true,
	)
	require.True(t, ok)
	assert.Equal(t, "UPDATE (SELECT VALUE id FROM person WHERE name = $p0 LIMIT 1) MERGE $patch RETURN AFTER", st.SQL)
	assert.Equal(t, map[string]any{"age": 20}, st.Vars["patch"])

	st, ok = conditionalUpdateStatement(store.Filter{}, store.Patch{}, false)
	require.True(t, ok)
	assert.Equal(t, "UPDATE (SELECT VALUE id FROM person LIMIT 1) MERGE $patch RETURN BEFORE", st.SQL)
}

func TestDeleteStatement(t *testing.T) {
	st, ok := deleteStatement(store.Where(store.Eq(store.FieldName, "Mary")))
	require.True(t, ok)
	assert.Equal(t, "DELETE person WHERE name = $p0 RETURN BEFORE", st.SQL)

	st, ok = deleteStatement(nil)
	require.True(t, ok)
	assert.Equal(t, "DELETE person RETURN BEFORE", st.SQL)
}

func TestPatchDocument(t *testing.T) {
	name := "Robert"
	doc := patchDocument(store.Patch{Name: &name, FavoriteFoods: []string{"Kale"}})
	assert.Equal(t, map[string]any{"name": "Robert", "favoriteFoods": []string{"Kale"}}, doc)
	assert.Empty(t, patchDocument(store.Patch{}))
}
