// Package models defines the Person document served by personapi.
//
// A [Person] is the only entity. It is stored unchanged by every backend in
// [github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store]: the same
// struct marshals to JSON for HTTP responses, to CBOR for SurrealDB and to
// columns for GORM.
//
// # Typed IDs
//
// [PersonID] wraps a UUID and knows its SurrealDB table at compile time.
// In SQL it reads and writes a plain uuid column. In SurrealDB it marshals
// to a RecordID (CBOR tag 8, content [table, id]) so that parameters and
// record content never need string concatenation such as "person:" + id.
// In JSON it is the bare UUID string.
package models
