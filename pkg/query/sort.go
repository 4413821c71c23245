package query

import "strings"

// sortableColumns is the closed set of sortable fields mapped to their
// column expressions. Unknown field names fall back to the primary key
// rather than failing; sorting is a presentation concern and must not
// turn a typo into an error.
var sortableColumns = map[string]string{
	"id":              "id",
	"indicator_type":  "indicator_type",
	"indicator_value": "indicator_value",
	"name":            "name",
	"source":          "source",
	"severity_score":  "severity_score",
	"date_added":      "date_added",
	"timestamp":       "created_at",
	"created_at":      "created_at",
}

// Sort selects one sortable field and a direction.
type Sort struct {
	Field string
	Order string // "asc" or "desc", any case; default desc
}

// Column resolves the sort field to a column expression, defaulting to id.
func (s Sort) Column() string {
	if col, ok := sortableColumns[strings.ToLower(strings.TrimSpace(s.Field))]; ok {
		return col
	}
	return "id"
}

// Direction resolves the sort order, defaulting to DESC.
func (s Sort) Direction() string {
	if strings.EqualFold(strings.TrimSpace(s.Order), "asc") {
		return "ASC"
	}
	return "DESC"
}

// OrderBy renders the ORDER BY clause. A secondary id key keeps the
// ordering total, so paging through results never duplicates or drops
// rows that tie on the primary sort field.
func (s Sort) OrderBy() string {
	col, dir := s.Column(), s.Direction()
	if col == "id" {
		return "ORDER BY id " + dir
	}
	return "ORDER BY " + col + " " + dir + ", id " + dir
}
