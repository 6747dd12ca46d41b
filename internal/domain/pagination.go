package domain

import "strconv"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of a list ordered by the repository.
type PaginationParams struct {
	Page     int
	PageSize int
}

// ParsePagination builds params from raw query values. Missing, malformed or out of
// range values fall back to the defaults; page size is capped at MaxPageSize.
func ParsePagination(page, pageSize string) PaginationParams {
	return PaginationParams{Page: atoiOr(page, 0), PageSize: atoiOr(pageSize, 0)}.Normalize()
}

// Normalize returns p with defaults applied and page size capped.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Limit is the SQL LIMIT of the page.
func (p PaginationParams) Limit() int { return p.Normalize().PageSize }

// Offset is the SQL OFFSET of the page.
func (p PaginationParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// TotalPages is the number of pages needed for total rows; zero rows means zero pages.
func (p PaginationParams) TotalPages(total int) int {
	size := p.Limit()
	return (total + size - 1) / size
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
