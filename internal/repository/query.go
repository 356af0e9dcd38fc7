package repository

import (
	"strings"
)

const (
	// CategoryField filters by case-insensitive exact category.
	CategoryField QueryField = "category"
	// SearchField filters by case-insensitive substring of the name.
	SearchField QueryField = "search"
	// StatusField filters events by status.
	StatusField QueryField = "status"
)

type Query struct {
	Values map[QueryField]string

	// Limit caps the number of returned rows. Zero means no cap.
	Limit int
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]string{},
	}
}

// With sets a filter value. Empty values are ignored so optional request
// parameters can be passed straight through.
func (q *Query) With(field QueryField, val string) *Query {
	if val == "" {
		return q
	}
	q.Values[field] = val
	return q
}

// MatchesProduct reports whether a product with the given name and category
// satisfies the category and search filters of the query.
func (q Query) MatchesProduct(name, category string) bool {
	if want, ok := q.Values[CategoryField]; ok && strings.ToLower(category) != strings.ToLower(want) {
		return false
	}
	if term, ok := q.Values[SearchField]; ok && !strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
		return false
	}
	return true
}
