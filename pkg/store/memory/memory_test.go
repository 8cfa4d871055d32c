package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/memory"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	created, err := s.Create(ctx, models.Person{Name: "Ann", FavoriteFoods: []string{"Figs"}})
	require.NoError(t, err)
	created.FavoriteFoods[0] = "Dates"

	found, err := s.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"Figs"}, found.FavoriteFoods)
}

func TestCreateIgnoresCallerID(t *testing.T) {
	ctx := context.Background()
	fixed := models.NewPersonID()
	s := memory.New(memory.WithIDGenerator(func() models.PersonID { return fixed }))

	created, err := s.Create(ctx, models.Person{ID: models.NewPersonID(), Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, fixed, created.ID)
}

func TestInsertionOrderWithoutSort(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for _, name := range []string{"c", "a", "b"} {
		_, err := s.Create(ctx, models.Person{Name: name})
		require.NoError(t, err)
	}

	all, err := s.Query(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Name)
	assert.Equal(t, "a", all[1].Name)
	assert.Equal(t, "b", all[2].Name)
}

// Meant for -race: concurrent conditional updates must not corrupt the map.
func TestConcurrentConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_, err := s.Create(ctx, models.Person{Name: "Counter", Age: models.IntPtr(0)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(age int) {
			defer wg.Done()
			_, err := s.ConditionalUpdate(ctx,
				store.Where(store.Eq(store.FieldName, "Counter")),
				store.Patch{Age: models.IntPtr(age)},
				store.UpdateOptions{ReturnUpdated: true},
			)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
}
