package query

// DefaultPerPage is the page size applied when the caller does not
// supply one.
const DefaultPerPage = 20

// MaxPerPage caps the page size to keep result payloads bounded.
const MaxPerPage = 500

// Page is a 1-indexed pagination request.
type Page struct {
	Number  int
	PerPage int
}

// Normalize clamps the request to valid values: page >= 1 and
// 1 <= per_page <= MaxPerPage, with DefaultPerPage when unset.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset is the row offset for the normalized request.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.PerPage
}

// Meta is derived pagination metadata for a known total row count.
type Meta struct {
	Pages    int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// MetaFor computes page metadata. A zero total yields zero pages, and
// out-of-range page numbers simply have no next page; neither is an
// error.
func MetaFor(total int64, p Page) Meta {
	p = p.Normalize()
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))

	m := Meta{Pages: pages}
	if p.Number > 1 {
		m.HasPrev = true
		m.PrevPage = p.Number - 1
	}
	if p.Number < pages {
		m.HasNext = true
		m.NextPage = p.Number + 1
	}
	return m
}
