package personapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

// Router serves the person routes. Each route performs one store
// operation and answers through handle.
type Router struct {
	store store.Store
	log   zerolog.Logger
}

// NewRouter returns a Router on s. Store failures are logged to log.
func NewRouter(s store.Store, log zerolog.Logger) *Router {
	return &Router{store: s, log: log}
}

// Register binds the person routes on r.
func (rt *Router) Register(r *mux.Router) {
	r.HandleFunc("/create-person", rt.handle("create-person", rt.createPerson)).Methods(http.MethodGet)
	r.HandleFunc("/create-people", rt.handle("create-people", rt.createPeople)).Methods(http.MethodPost)
	r.HandleFunc("/people-by-name/{name}", rt.handle("people-by-name", rt.peopleByName)).Methods(http.MethodGet)
	r.HandleFunc("/person-by-food/{food}", rt.handle("person-by-food", rt.personByFood)).Methods(http.MethodGet)
	r.HandleFunc("/person-by-id/{personId}", rt.handle("person-by-id", rt.personByID)).Methods(http.MethodGet)
	r.HandleFunc("/edit-then-save/{personId}", rt.handle("edit-then-save", rt.editThenSave)).Methods(http.MethodPut)
	r.HandleFunc("/update-person/{personName}", rt.handle("update-person", rt.updatePerson)).Methods(http.MethodPatch)
	r.HandleFunc("/remove-person/{personId}", rt.handle("remove-person", rt.removePerson)).Methods(http.MethodDelete)
	r.HandleFunc("/remove-people", rt.handle("remove-people", rt.removePeople)).Methods(http.MethodDelete)
	r.HandleFunc("/query-chain", rt.handle("query-chain", rt.queryChain)).Methods(http.MethodGet)
}

func (rt *Router) createPerson(r *http.Request) (any, error) {
	return found(rt.store.Create(r.Context(), samplePerson()))
}

func (rt *Router) createPeople(r *http.Request) (any, error) {
	return rt.store.CreateMany(r.Context(), samplePeople())
}

func (rt *Router) peopleByName(r *http.Request) (any, error) {
	return rt.store.FindByField(r.Context(), store.FieldName, mux.Vars(r)["name"])
}

func (rt *Router) personByFood(r *http.Request) (any, error) {
	return found(rt.store.FindOneByField(r.Context(), store.FieldFavoriteFoods, mux.Vars(r)["food"]))
}

func (rt *Router) personByID(r *http.Request) (any, error) {
	return found(rt.store.FindByID(r.Context(), mux.Vars(r)["personId"]))
}

// editThenSave appends a food with a load-mutate-save. Unlike the other
// single-record routes a missing id is an error here.
func (rt *Router) editThenSave(r *http.Request) (any, error) {
	return found(store.LoadMutateSave(r.Context(), rt.store, mux.Vars(r)["personId"], store.AppendFood(editFood)))
}

func (rt *Router) updatePerson(r *http.Request) (any, error) {
	return found(rt.store.ConditionalUpdate(r.Context(),
		store.Where(store.Eq(store.FieldName, mux.Vars(r)["personName"])),
		store.Patch{Age: models.IntPtr(updateAge)},
		store.UpdateOptions{ReturnUpdated: true},
	))
}

func (rt *Router) removePerson(r *http.Request) (any, error) {
	return found(rt.store.DeleteByID(r.Context(), mux.Vars(r)["personId"]))
}

func (rt *Router) removePeople(r *http.Request) (any, error) {
	return rt.store.DeleteMany(r.Context(), store.Where(store.Eq(store.FieldName, removePeopleFor)))
}

func (rt *Router) queryChain(r *http.Request) (any, error) {
	return rt.store.Query(r.Context(), store.Query{
		Filter:     store.Where(store.Contains(queryChainFood)),
		Sort:       store.Asc(store.FieldName),
		Limit:      queryChainLimit,
		Projection: store.Exclude(store.FieldAge),
	})
}
