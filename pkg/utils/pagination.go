package utils

// MaxPageLimit caps client supplied limits
const MaxPageLimit = 100

// PageRequest is a 1-based page window. Limit 0 selects every item.
type PageRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// PageMeta describes the window returned to the client
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// ParsePageRequest normalizes raw query values: page starts at 1, negative
// limits mean everything and limits above MaxPageLimit are clamped.
func ParsePageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 0:
		limit = 0
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// WithDefaultLimit fills in n when no limit was requested
func (p PageRequest) WithDefaultLimit(n int) PageRequest {
	if p.Limit <= 0 {
		p.Limit = n
	}
	return p
}

// Offset is the number of items before the window
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func NewPageMeta(total int64, p PageRequest) PageMeta {
	if p.Limit <= 0 {
		return PageMeta{Page: 1, Limit: int(total), TotalCount: total, TotalPages: 1}
	}
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: int((total + int64(p.Limit) - 1) / int64(p.Limit)),
	}
}

// Window returns the items selected by p
func Window[T any](items []T, p PageRequest) []T {
	if p.Limit <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
