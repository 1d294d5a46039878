package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationMeta(t *testing.T) {
	// 45 results at 20 per page span 3 pages.
	p := PaginationMeta(1, 20, 45)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
	assert.True(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)

	p = PaginationMeta(3, 20, 45)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
}

func TestPaginationMetaEmpty(t *testing.T) {
	p := PaginationMeta(1, 20, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 7, ParsePage("7"))
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 20, ParseLimit("", 20))
	assert.Equal(t, 20, ParseLimit("0", 20))
	assert.Equal(t, 50, ParseLimit("50", 20))
	assert.Equal(t, 100, ParseLimit("500", 20), "limit is capped at 100")
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 20, Offset(2, 20))
	assert.Equal(t, 40, Offset(3, 20))
}
