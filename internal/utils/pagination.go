package utils

import "strconv"

// Pagination is the metadata block attached to every list response.
type Pagination struct {
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// PaginationMeta builds the pagination block for a page of results.
func PaginationMeta(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// ParsePage parses a page query parameter, defaulting to 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseLimit parses a limit query parameter, clamped to [1, 100] with
// the given default.
func ParseLimit(raw string, defaultLimit int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// Offset returns the row offset for a page.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
