package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{
			"https://res.cloudinary.com/demo/image/upload/v1700000000/trove/listings/abc/img1.jpg",
			"trove/listings/abc/img1",
		},
		{
			"https://res.cloudinary.com/demo/image/upload/trove/listings/abc/img1.png",
			"trove/listings/abc/img1",
		},
		{
			// No extension.
			"https://res.cloudinary.com/demo/image/upload/v42/folder/img",
			"folder/img",
		},
		{
			// Not a Cloudinary delivery URL.
			"https://example.com/images/img1.jpg",
			"",
		},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, publicIDFromURL(tc.url), "url %s", tc.url)
	}
}

func TestListingFilterBuildsPlaceholders(t *testing.T) {
	var f listingFilter
	f.add("status = %s", "available")
	f.add("category = %s", "furniture")
	f.add("price >= %s", 10.0)

	assert.Equal(t, " WHERE status = $1 AND category = $2 AND price >= $3", f.where())
	assert.Equal(t, []any{"available", "furniture", 10.0}, f.args)
}

func TestListingFilterEmpty(t *testing.T) {
	var f listingFilter
	assert.Empty(t, f.where())
	assert.Empty(t, f.args)
}

func TestListingFilterMultiValueCondition(t *testing.T) {
	var f listingFilter
	f.add("price BETWEEN %s AND %s", 10.0, 50.0)

	assert.Equal(t, " WHERE price BETWEEN $1 AND $2", f.where())
	assert.Len(t, f.args, 2)
}
