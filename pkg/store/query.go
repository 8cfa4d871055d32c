package store

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
)

// Field names a queryable Person field. The names match the JSON and
// SurrealDB field names.
type Field string

const (
	FieldID            Field = "id"
	FieldName          Field = "name"
	FieldAge           Field = "age"
	FieldFavoriteFoods Field = "favoriteFoods"
)

// Fields lists every Field in document order.
var Fields = []Field{FieldID, FieldName, FieldAge, FieldFavoriteFoods}

func (f Field) valid() bool {
	return slices.Contains(Fields, f)
}

// Condition matches one field against a value. Scalar fields match by
// equality. FieldFavoriteFoods matches when the list contains Value.
//
// Value must be a string for FieldID, FieldName and FieldFavoriteFoods and
// an int for FieldAge.
type Condition struct {
	Field Field
	Value any
}

// Eq matches field equal to value.
func Eq(field Field, value any) Condition {
	return Condition{Field: field, Value: value}
}

// Contains matches people whose favourite foods include food.
func Contains(food string) Condition {
	return Condition{Field: FieldFavoriteFoods, Value: food}
}

// Validate reports a malformed condition.
func (c Condition) Validate() error {
	switch c.Field {
	case FieldID, FieldName, FieldFavoriteFoods:
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidQuery, c.Field, c.Value)
		}
	case FieldAge:
		if _, ok := c.Value.(int); !ok {
			return fmt.Errorf("%w: %s expects an int, got %T", ErrInvalidQuery, c.Field, c.Value)
		}
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, c.Field)
	}
	return nil
}

// Match evaluates c against p. c must be valid.
func (c Condition) Match(p *models.Person) bool {
	switch c.Field {
	case FieldID:
		id, err := models.ParsePersonID(c.Value.(string))
		return err == nil && p.ID == id
	case FieldName:
		return p.Name == c.Value.(string)
	case FieldAge:
		return p.Age != nil && *p.Age == c.Value.(int)
	case FieldFavoriteFoods:
		return slices.Contains(p.FavoriteFoods, c.Value.(string))
	}
	return false
}

// Filter is a conjunction of conditions. The empty filter matches every
// person.
type Filter []Condition

// Where builds a Filter.
func Where(conds ...Condition) Filter {
	return Filter(conds)
}

func (f Filter) Validate() error {
	for _, c := range f {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f Filter) Match(p *models.Person) bool {
	for _, c := range f {
		if !c.Match(p) {
			return false
		}
	}
	return true
}

// Patch sets fields on a matched person. Nil members are left alone.
type Patch struct {
	Name          *string
	Age           *int
	FavoriteFoods []string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.FavoriteFoods == nil
}

func (p Patch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: %w", ErrValidation, models.ErrNameRequired)
	}
	return nil
}

// Apply writes the patch into person.
func (p Patch) Apply(person *models.Person) {
	if p.Name != nil {
		person.Name = *p.Name
	}
	if p.Age != nil {
		age := *p.Age
		person.Age = &age
	}
	if p.FavoriteFoods != nil {
		person.FavoriteFoods = slices.Clone(p.FavoriteFoods)
	}
}

// Sort orders results by one field.
type Sort struct {
	Field Field
	Desc  bool
}

// Asc sorts by field in ascending order.
func Asc(field Field) *Sort {
	return &Sort{Field: field}
}

func (s Sort) Validate() error {
	switch s.Field {
	case FieldID, FieldName, FieldAge:
		return nil
	case FieldFavoriteFoods:
		return fmt.Errorf("%w: cannot sort by %s", ErrInvalidQuery, s.Field)
	}
	return fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, s.Field)
}

// Compare orders a and b by the sort field. An absent age sorts before any
// present one.
func (s Sort) Compare(a, b *models.Person) int {
	var c int
	switch s.Field {
	case FieldID:
		c = cmp.Compare(a.ID.String(), b.ID.String())
	case FieldName:
		c = cmp.Compare(a.Name, b.Name)
	case FieldAge:
		switch {
		case a.Age == nil && b.Age == nil:
		case a.Age == nil:
			c = -1
		case b.Age == nil:
			c = 1
		default:
			c = cmp.Compare(*a.Age, *b.Age)
		}
	}
	if s.Desc {
		return -c
	}
	return c
}

// Projection keeps or drops fields in query results. Include keeps only
// the listed fields plus id; Exclude drops the listed fields. Setting both
// is invalid. The zero Projection keeps everything.
type Projection struct {
	Include []Field
	Exclude []Field
}

// Exclude builds a Projection that drops fields.
func Exclude(fields ...Field) Projection {
	return Projection{Exclude: fields}
}

// Include builds a Projection that keeps only fields (and id).
func Include(fields ...Field) Projection {
	return Projection{Include: fields}
}

func (p Projection) Validate() error {
	if len(p.Include) > 0 && len(p.Exclude) > 0 {
		return fmt.Errorf("%w: projection cannot both include and exclude", ErrInvalidQuery)
	}
	for _, f := range append(slices.Clone(p.Include), p.Exclude...) {
		if !f.valid() {
			return fmt.Errorf("%w: unknown projection field %q", ErrInvalidQuery, f)
		}
	}
	return nil
}

// Keeps reports whether field survives the projection.
func (p Projection) Keeps(field Field) bool {
	if len(p.Include) > 0 {
		return field == FieldID || slices.Contains(p.Include, field)
	}
	return !slices.Contains(p.Exclude, field)
}

// Kept lists the surviving fields in document order.
func (p Projection) Kept() []Field {
	kept := make([]Field, 0, len(Fields))
	for _, f := range Fields {
		if p.Keeps(f) {
			kept = append(kept, f)
		}
	}
	return kept
}

// IsZero reports whether the projection keeps every field.
func (p Projection) IsZero() bool {
	return len(p.Include) == 0 && len(p.Exclude) == 0
}

// Apply clears the fields person does not keep.
func (p Projection) Apply(person *models.Person) {
	if p.IsZero() {
		return
	}
	if !p.Keeps(FieldID) {
		person.ID = models.PersonID{}
	}
	if !p.Keeps(FieldName) {
		person.Name = ""
	}
	if !p.Keeps(FieldAge) {
		person.Age = nil
	}
	if !p.Keeps(FieldFavoriteFoods) {
		person.FavoriteFoods = nil
	}
}

// Query is a composable read. Limit 0 means no limit.
type Query struct {
	Filter     Filter
	Sort       *Sort
	Limit      int
	Projection Projection
}

func (q Query) Validate() error {
	if err := q.Filter.Validate(); err != nil {
		return err
	}
	if q.Sort != nil {
		if err := q.Sort.Validate(); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Limit)
	}
	return q.Projection.Validate()
}

// Run evaluates q over people in filter, sort, limit, projection order.
// people is not modified; the result holds copies.
func (q Query) Run(people []models.Person) []models.Person {
	out := make([]models.Person, 0, len(people))
	for i := range people {
		if q.Filter.Match(&people[i]) {
			out = append(out, people[i].Clone())
		}
	}
	if q.Sort != nil {
		slices.SortStableFunc(out, func(a, b models.Person) int {
			return q.Sort.Compare(&a, &b)
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	for i := range out {
		q.Projection.Apply(&out[i])
	}
	return out
}

// UpdateOptions controls ConditionalUpdate.
type UpdateOptions struct {
	// ReturnUpdated returns the record after the patch instead of before.
	ReturnUpdated bool
}

// DeleteResult reports a bulk delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
