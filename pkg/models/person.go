package models

import (
	"errors"
	"slices"

	"gorm.io/gorm"
)

// ErrNameRequired is returned by [Person.Validate] for a blank name.
var ErrNameRequired = errors.New("name is required")

// Person is a stored person document.
//
// Age is a pointer so that an absent age stays distinct from zero.
// FavoriteFoods keeps its order; it is stored as a JSON array in SQL.
type Person struct {
	ID            PersonID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string   `gorm:"not null" json:"name"`
	Age           *int     `json:"age,omitempty"`
	FavoriteFoods []string `gorm:"serializer:json;type:text" json:"favoriteFoods,omitempty"`
}

// TableName sets the SQL table name for GORM.
func (Person) TableName() string {
	return "people"
}

// BeforeCreate hook to generate ID if not set
func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID.IsZero() {
		p.ID = NewPersonID()
	}
	return nil
}

// Validate checks the schema invariants of a person.
func (p *Person) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Normalize replaces a nil food list with an empty one so that every
// backend hands out the same value for "no favourite foods".
func (p *Person) Normalize() {
	if p.FavoriteFoods == nil {
		p.FavoriteFoods = []string{}
	}
}

// Clone returns a deep copy of p.
func (p Person) Clone() Person {
	out := p
	if p.Age != nil {
		age := *p.Age
		out.Age = &age
	}
	if p.FavoriteFoods != nil {
		out.FavoriteFoods = slices.Clone(p.FavoriteFoods)
	}
	return out
}

// IntPtr returns a pointer to v, for filling the optional Age.
func IntPtr(v int) *int {
	return &v
}
