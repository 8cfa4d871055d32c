package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// PersonTable is the SurrealDB table that holds Person records.
const PersonTable = "person"

// recordIDTag is the CBOR tag SurrealDB uses for record ids.
const recordIDTag = 8

// PersonID is the typed identifier of a Person.
type PersonID struct {
	uuid uuid.UUID
}

func NewPersonID() PersonID {
	return PersonID{uuid: uuid.New()}
}

func NewPersonIDFromUUID(id uuid.UUID) PersonID {
	return PersonID{uuid: id}
}

// ParsePersonID parses the string form of a PersonID. Anything that is not a
// UUID is rejected; callers looking records up by id treat that as not found.
func ParsePersonID(s string) (PersonID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PersonID{}, fmt.Errorf("invalid person ID %q: %w", s, err)
	}
	return PersonID{uuid: id}, nil
}

func (p PersonID) UUID() uuid.UUID { return p.uuid }
func (p PersonID) String() string  { return p.uuid.String() }
func (p PersonID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p PersonID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: PersonTable,
		ID:    p.uuid.String(),
	}
}

func (p PersonID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *PersonID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		p.uuid = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	p.uuid = id
	return nil
}

func (p PersonID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{PersonTable, p.uuid.String()},
	})
}

func (p *PersonID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, PersonTable, &p.uuid)
}

func (p PersonID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *PersonID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (PersonID) GormDataType() string { return "uuid" }

func scanUUID(value any, target *uuid.UUID) error {
	switch v := value.(type) {
	case nil:
		*target = uuid.Nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}

// unmarshalCBORID decodes a SurrealDB record id of the form tag 8 [table, id]
// and checks that it belongs to expectedTable.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// major type 6 is a tagged item
	if majorType := data[0] >> 5; majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}
	if tag.Number != recordIDTag {
		return fmt.Errorf("expected RecordID tag (%d), got %d", recordIDTag, tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}
	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}
	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}
	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}
	*target = id
	return nil
}
