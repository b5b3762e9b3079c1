package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects one page of a listing. Pages are numbered from 1.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize clamps the page to at least 1 and the limit to 1..MaxPageSize,
// using DefaultPageSize when no limit was given.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before the page starts.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageInfo describes where a page sits in the full result set
type PageInfo struct {
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// NewPageInfo reports total rows and the page count for the request.
func NewPageInfo(request PageRequest, total int) PageInfo {
	n := request.Normalize()
	return PageInfo{
		Total:       total,
		TotalPages:  (total + n.Limit - 1) / n.Limit,
		CurrentPage: n.Page,
	}
}
