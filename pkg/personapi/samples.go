package personapi

import "github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"

// Fixed inputs of the demo routes. The routes take no request body; these
// values are the whole payload.
const (
	editFood        = "Hamburger"
	updateAge       = 20
	removePeopleFor = "Mary"
	queryChainFood  = "Burritos"
	queryChainLimit = 2
)

// samplePerson is the record created by GET /create-person.
func samplePerson() models.Person {
	return models.Person{
		Name:          "sami saafi",
		Age:           models.IntPtr(21),
		FavoriteFoods: []string{"Pizza", "Burger"},
	}
}

// samplePeople is the batch created by POST /create-people.
func samplePeople() []models.Person {
	return []models.Person{
		{Name: "Alice", Age: models.IntPtr(30), FavoriteFoods: []string{"Sushi", "Pasta"}},
		{Name: "Bob", Age: models.IntPtr(35), FavoriteFoods: []string{"Burger", "Ice Cream"}},
	}
}
