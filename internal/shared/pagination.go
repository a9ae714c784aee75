package shared

import (
	"math"
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// PageParams carries the requested page window.
type PageParams struct {
	Page    int
	PerPage int
}

// Offset returns the row offset for the window.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageParamsFromRequest reads page/per_page query parameters with defaults.
func PageParamsFromRequest(r *http.Request) PageParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(params PageParams, total int) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(params.PerPage)))
	return Pagination{Page: params.Page, PerPage: params.PerPage, TotalItems: total, TotalPages: totalPages}
}
