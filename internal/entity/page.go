package entity

import "math"

const (
	// MaxPerPage bounds the page size of every listing.
	MaxPerPage = 100
	// maxOffset bounds how many rows may precede a page.
	maxOffset = math.MaxInt32
)

// Pagination selects one page of a listing. Page is 1-based.
type Pagination struct {
	Page    int
	PerPage int
}

// NewPagination clamps perPage to [1, MaxPerPage] and page to the pages
// whose offset stays within bounds.
func NewPagination(page, perPage int) Pagination {
	perPage = min(max(perPage, 1), MaxPerPage)
	lastPage := maxOffset/perPage + 1
	return Pagination{Page: min(max(page, 1), lastPage), PerPage: perPage}
}

// Offset returns the number of rows preceding the page.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	if p.Page-1 > maxOffset/p.PerPage {
		return maxOffset
	}
	return (p.Page - 1) * p.PerPage
}

// Page is a paginated listing.
type Page[T any] struct {
	CurrentPage int  `json:"current_page"`
	Data        []T  `json:"data"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	LastPage    int  `json:"last_page"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// NewPage wraps one page of rows with the listing totals.
func NewPage[T any](data []T, total int, p Pagination) Page[T] {
	if data == nil {
		data = []T{}
	}
	page := Page[T]{
		CurrentPage: p.Page,
		Data:        data,
		PerPage:     p.PerPage,
		Total:       total,
		LastPage:    1,
	}
	if p.PerPage > 0 && total > 0 {
		page.LastPage = (total-1)/p.PerPage + 1
	}
	if len(data) > 0 {
		from := p.Offset() + 1
		to := p.Offset() + len(data)
		page.From, page.To = &from, &to
	}
	return page
}
