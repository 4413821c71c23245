package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortOrderBy(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want string
	}{
		{"default is id desc", Sort{}, "ORDER BY id DESC"},
		{"explicit asc", Sort{Field: "id", Order: "asc"}, "ORDER BY id ASC"},
		{"case insensitive order", Sort{Field: "id", Order: "ASC"}, "ORDER BY id ASC"},
		{"severity with id tie-break", Sort{Field: "severity_score", Order: "desc"}, "ORDER BY severity_score DESC, id DESC"},
		{"date added", Sort{Field: "date_added", Order: "asc"}, "ORDER BY date_added ASC, id ASC"},
		{"timestamp maps to created_at", Sort{Field: "timestamp"}, "ORDER BY created_at DESC, id DESC"},
		{"unknown field falls back to id", Sort{Field: "no_such_column"}, "ORDER BY id DESC"},
		{"injection attempt falls back to id", Sort{Field: "id; DROP TABLE indicators"}, "ORDER BY id DESC"},
		{"unknown order falls back to desc", Sort{Field: "name", Order: "sideways"}, "ORDER BY name DESC, id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sort.OrderBy())
		})
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want Page
	}{
		{"defaults applied", Page{}, Page{Number: 1, PerPage: DefaultPerPage}},
		{"negative page clamped", Page{Number: -3, PerPage: 10}, Page{Number: 1, PerPage: 10}},
		{"oversized per page capped", Page{Number: 2, PerPage: 10000}, Page{Number: 2, PerPage: MaxPerPage}},
		{"valid passes through", Page{Number: 4, PerPage: 25}, Page{Number: 4, PerPage: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.Normalize())
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, PerPage: 20}.Offset())
	assert.Equal(t, 40, Page{Number: 3, PerPage: 20}.Offset())
	assert.Equal(t, 0, Page{}.Offset())
}

func TestMetaFor(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		page  Page
		want  Meta
	}{
		{
			name:  "zero total means zero pages",
			total: 0,
			page:  Page{Number: 1, PerPage: 20},
			want:  Meta{Pages: 0},
		},
		{
			name:  "partial last page rounds up",
			total: 3,
			page:  Page{Number: 1, PerPage: 2},
			want:  Meta{Pages: 2, HasNext: true, NextPage: 2},
		},
		{
			name:  "last page has prev only",
			total: 3,
			page:  Page{Number: 2, PerPage: 2},
			want:  Meta{Pages: 2, HasPrev: true, PrevPage: 1},
		},
		{
			name:  "exact multiple",
			total: 40,
			page:  Page{Number: 1, PerPage: 20},
			want:  Meta{Pages: 2, HasNext: true, NextPage: 2},
		},
		{
			name:  "out of range page is not an error",
			total: 3,
			page:  Page{Number: 9, PerPage: 2},
			want:  Meta{Pages: 2, HasPrev: true, PrevPage: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MetaFor(tt.total, tt.page))
		})
	}
}
