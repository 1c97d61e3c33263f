package directus_test

import (
	"net/url"
	"testing"

	"github.com/eallion/webstack-sync/pkg/directus"
	"github.com/stretchr/testify/assert"
)

//nolint:funlen // Test functions can be longer for detailed testing
func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *directus.QueryParams
		expected url.Values
	}{
		{
			name:     "empty params",
			params:   directus.NewQueryParams(),
			expected: url.Values{},
		},
		{
			name:   "first page carries offset zero",
			params: &directus.QueryParams{Limit: 100},
			expected: url.Values{
				"limit":  []string{"100"},
				"offset": []string{"0"},
			},
		},
		{
			name:   "fields are comma joined",
			params: directus.NewQueryParams().WithFields("*", "WebCategories.WebCategory_id.*"),
			expected: url.Values{
				"fields": []string{"*,WebCategories.WebCategory_id.*"},
			},
		},
		{
			name:   "field selector is split and trimmed",
			params: directus.NewQueryParams().WithFieldSelector("id, filename_disk,"),
			expected: url.Values{
				"fields": []string{"id,filename_disk"},
			},
		},
		{
			name:   "unlimited",
			params: directus.NewQueryParams().WithLimit(-1),
			expected: url.Values{
				"limit": []string{"-1"},
			},
		},
		{
			name: "all options",
			params: directus.NewQueryParams().
				WithFields("id").
				WithLimit(10).
				WithOffset(20).
				WithSort("-weight", "title").
				WithFilter(`{"status":{"_eq":"published"}}`).
				WithSearch("blog").
				WithMeta("total_count"),
			expected: url.Values{
				"fields": []string{"id"},
				"limit":  []string{"10"},
				"offset": []string{"20"},
				"sort":   []string{"-weight,title"},
				"filter": []string{`{"status":{"_eq":"published"}}`},
				"search": []string{"blog"},
				"meta":   []string{"total_count"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.params.ToValues())
		})
	}
}

func TestQueryParams_Clone(t *testing.T) {
	t.Parallel()

	original := directus.NewQueryParams().WithFields("id").WithSort("title")
	clone := original.Clone().WithFields("filename_disk").WithLimit(5)

	assert.Equal(t, []string{"id"}, original.Fields)
	assert.Equal(t, 0, original.Limit)
	assert.Equal(t, []string{"id", "filename_disk"}, clone.Fields)

	var nilParams *directus.QueryParams
	assert.NotNil(t, nilParams.Clone())
}
