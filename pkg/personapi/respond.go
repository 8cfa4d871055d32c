package personapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/internal/observe"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

// errorMessage is the only body a failed request ever gets.
const errorMessage = "An error occurred"

// operation runs one store operation for a request. A nil result with a
// nil error means "not found".
type operation func(r *http.Request) (any, error)

// handle turns an operation into a handler. It is the single place where
// results and errors become responses:
//
//   - error: 500, text/plain "An error occurred"; the cause is logged only
//   - nil result: 200 with an empty body
//   - anything else: 200 with the JSON encoding of the result
func (rt *Router) handle(op string, fn operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := fn(r)
		if err != nil {
			rt.fail(w, r, op, err)
			return
		}
		if result == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		body, err := json.Marshal(result)
		if err != nil {
			rt.fail(w, r, op, fmt.Errorf("encode response: %w", err))
			return
		}
		respondJSON(w, http.StatusOK, body)
	}
}

func (rt *Router) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := observe.Logger(r.Context(), rt.log)
	log.Error().
		Err(err).
		Str("op", op).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(errorMessage))
}

func respondJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// found adapts a single-record store result, keeping a nil record as an
// untyped nil so that handle sees "not found".
func found(p *models.Person, err error) (any, error) {
	if err != nil || p == nil {
		return nil, err
	}
	return p, nil
}
