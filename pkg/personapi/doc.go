// Package personapi is a small HTTP service exposing CRUD operations over a
// collection of people.
//
// Every route runs exactly one entity store operation with fixed demo
// inputs and answers through one response wrapper:
//
//	GET    /create-person               create "sami saafi"
//	POST   /create-people               create Alice and Bob in one batch
//	GET    /people-by-name/{name}       all people with that name
//	GET    /person-by-food/{food}       first person who likes food
//	GET    /person-by-id/{personId}     one person by id
//	PUT    /edit-then-save/{personId}   append "Hamburger" (load, mutate, save)
//	PATCH  /update-person/{personName}  set age to 20 on the first match
//	DELETE /remove-person/{personId}    delete one person by id
//	DELETE /remove-people               delete every "Mary"
//	GET    /query-chain                 Burritos lovers, by name, first 2, no age
//
// Results are 200 with a JSON body. A missing record is 200 with an empty
// body. Any failure is 500 with the plain-text body "An error occurred"; the
// cause is logged, never returned.
//
// [App] wires a store backend (SurrealDB, PostgreSQL, SQLite or memory),
// telemetry and the health checks together; [Main] is the command-line
// entry point.
package personapi
