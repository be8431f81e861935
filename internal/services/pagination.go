package services

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize replaces missing or invalid values with the defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPagination builds the page metadata; totalPages is ceil(total / limit).
func NewPagination(p PageRequest, total int64) Pagination {
	p = p.Normalize()
	limit := int64(p.Limit)
	totalPages := int((total + limit - 1) / limit)
	return Pagination{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNextPage:  p.Page < totalPages,
		HasPrevPage:  p.Page > 1,
	}
}
