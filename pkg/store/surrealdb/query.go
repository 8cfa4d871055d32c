package surrealdb

import (
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
)

// statement is a parameterized SurrealQL statement.
//
// Values never end up in SQL text: every condition value is bound to a
// $pN variable. Field names come from a fixed whitelist.
type statement struct {
	SQL  string
	Vars map[string]any
}

// fieldNames maps query fields to document field names.
var fieldNames = map[store.Field]string{
	store.FieldID:            "id",
	store.FieldName:          "name",
	store.FieldAge:           "age",
	store.FieldFavoriteFoods: "favoriteFoods",
}

// whereClause renders filter as a WHERE clause (empty for no conditions)
// and adds its values to vars. ok is false when the filter can never
// match, which happens for ids that are not valid person ids.
func whereClause(filter store.Filter, vars map[string]any) (clause string, ok bool) {
	if len(filter) == 0 {
		return "", true
	}

	parts := make([]string, 0, len(filter))
	for i, c := range filter {
		name := fmt.Sprintf("p%d", i)
		switch c.Field {
		case store.FieldID:
			id, err := models.ParsePersonID(c.Value.(string))
			if err != nil {
				return "", false
			}
			vars[name] = id.RecordID()
			parts = append(parts, "id = $"+name)
		case store.FieldFavoriteFoods:
			vars[name] = c.Value
			parts = append(parts, "favoriteFoods CONTAINS $"+name)
		default:
			vars[name] = c.Value
			parts = append(parts, fieldNames[c.Field]+" = $"+name)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), true
}

// selectStatement renders q as a SELECT on the person table. The query is
// expected to be valid.
func selectStatement(q store.Query) (statement, bool) {
	vars := map[string]any{}
	where, ok := whereClause(q.Filter, vars)
	if !ok {
		return statement{}, false
	}

	// ORDER BY may only name selected fields. A sort field the projection
	// drops is still selected here and cleared by Projection.Apply.
	var sortField store.Field
	if q.Sort != nil {
		sortField = q.Sort.Field
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	switch {
	case len(q.Projection.Include) > 0:
		kept := q.Projection.Kept()
		names := make([]string, 0, len(kept)+1)
		for _, f := range kept {
			names = append(names, fieldNames[f])
		}
		if q.Sort != nil && !q.Projection.Keeps(sortField) {
			names = append(names, fieldNames[sortField])
		}
		sb.WriteString(strings.Join(names, ", "))
	case len(q.Projection.Exclude) > 0:
		names := make([]string, 0, len(q.Projection.Exclude))
		for _, f := range q.Projection.Exclude {
			if q.Sort != nil && f == sortField {
				continue
			}
			names = append(names, fieldNames[f])
		}
		if len(names) == 0 {
			sb.WriteString("*")
			break
		}
		sb.WriteString("* OMIT ")
		sb.WriteString(strings.Join(names, ", "))
	default:
		sb.WriteString("*")
	}
	sb.WriteString(" FROM ")
	sb.WriteString(models.PersonTable)
	sb.WriteString(where)

	if q.Sort != nil {
		dir := "ASC"
		if q.Sort.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", fieldNames[q.Sort.Field], dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	return statement{SQL: sb.String(), Vars: vars}, true
}

// conditionalUpdateStatement merges patch into the first record matching
// filter, in one statement.
func conditionalUpdateStatement(filter store.Filter, patch store.Patch, returnUpdated bool) (statement, bool) {
	vars := map[string]any{}
	where, ok := whereClause(filter, vars)
	if !ok {
		return statement{}, false
	}
	vars["patch"] = patchDocument(patch)

	ret := "BEFORE"
	if returnUpdated {
		ret = "AFTER"
	}
	sql := fmt.Sprintf("UPDATE (SELECT VALUE id FROM %s%s LIMIT 1) MERGE $patch RETURN %s",
		models.PersonTable, where, ret)
	return statement{SQL: sql, Vars: vars}, true
}

// deleteStatement removes every record matching filter and returns them.
func deleteStatement(filter store.Filter) (statement, bool) {
	vars := map[string]any{}
	where, ok := whereClause(filter, vars)
	if !ok {
		return statement{}, false
	}
	return statement{
		SQL:  "DELETE " + models.PersonTable + where + " RETURN BEFORE",
		Vars: vars,
	}, true
}

// patchDocument turns the set fields of patch into a MERGE document.
func patchDocument(patch store.Patch) map[string]any {
	doc := map[string]any{}
	if patch.Name != nil {
		doc[fieldNames[store.FieldName]] = *patch.Name
	}
	if patch.Age != nil {
		doc[fieldNames[store.FieldAge]] = *patch.Age
	}
	if patch.FavoriteFoods != nil {
		doc[fieldNames[store.FieldFavoriteFoods]] = patch.FavoriteFoods
	}
	return doc
}
