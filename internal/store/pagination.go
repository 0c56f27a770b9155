package store

// Default and maximum page sizes for listings.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// PageParams contains offset pagination request parameters.
type PageParams struct {
	Limit int // Items per page; 0 means unlimited
	Page  int // Zero-based page index
}

// Validate clamps pagination parameters into range.
func (p *PageParams) Validate() {
	if p.Limit < 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Page < 0 {
		p.Page = 0
	}
}

// Offset returns the row offset of the page.
func (p PageParams) Offset() int {
	if p.Limit == 0 {
		return 0
	}
	return p.Limit * p.Page
}
